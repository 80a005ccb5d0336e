package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	shine "github.com/braheezy/shine-mp3/pkg/mp3"
	gomp3 "github.com/hajimehoshi/go-mp3"
)

// bytesPerFrame is one stereo sample of 16-bit PCM: 2 channels * 2 bytes.
// go-mp3 always decodes to this layout regardless of the source channels.
const bytesPerFrame = 4

// Segment is decoded audio held in memory as 16-bit little-endian stereo PCM.
type Segment struct {
	sampleRate int
	pcm        []byte
}

// DecodeMP3 decodes an MP3 stream into a segment.
func DecodeMP3(r io.Reader) (*Segment, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mp3: %w", err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to read decoded audio: %w", err)
	}
	return &Segment{sampleRate: dec.SampleRate(), pcm: pcm}, nil
}

// Silence returns a silent segment of the given duration.
func Silence(sampleRate int, d time.Duration) *Segment {
	frames := int(int64(sampleRate) * d.Milliseconds() / 1000)
	return &Segment{sampleRate: sampleRate, pcm: make([]byte, frames*bytesPerFrame)}
}

// Duration reports the segment's playback length.
func (s *Segment) Duration() time.Duration {
	frames := len(s.pcm) / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(s.sampleRate)
}

// SampleRate reports the segment's sample rate.
func (s *Segment) SampleRate() int {
	return s.sampleRate
}

// Concat joins segments in order, inserting gap between consecutive segments
// (not before the first or after the last). All segments must share one
// sample rate.
func Concat(segments []*Segment, gap time.Duration) (*Segment, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments to concatenate")
	}
	rate := segments[0].sampleRate
	for i, seg := range segments {
		if seg.sampleRate != rate {
			return nil, fmt.Errorf("segment %d sample rate %d does not match %d", i, seg.sampleRate, rate)
		}
	}

	silence := Silence(rate, gap)
	total := 0
	for _, seg := range segments {
		total += len(seg.pcm)
	}
	total += len(silence.pcm) * (len(segments) - 1)

	pcm := make([]byte, 0, total)
	for i, seg := range segments {
		if i > 0 {
			pcm = append(pcm, silence.pcm...)
		}
		pcm = append(pcm, seg.pcm...)
	}
	return &Segment{sampleRate: rate, pcm: pcm}, nil
}

// EncodeMP3 writes the segment back out as MP3.
func (s *Segment) EncodeMP3(w io.Writer) error {
	samples := make([]int16, len(s.pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(s.pcm[i*2:]))
	}
	enc := shine.NewEncoder(s.sampleRate, 2)
	if err := enc.Write(w, samples); err != nil {
		return fmt.Errorf("failed to encode mp3: %w", err)
	}
	return nil
}
