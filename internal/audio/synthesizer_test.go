package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"newslistener/internal/core"
)

type fakeSpeech struct {
	mu    sync.Mutex
	calls []string
	fail  map[int]error // call index -> error
	out   []byte
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text, instructions string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := len(f.calls)
	f.calls = append(f.calls, text)
	if err, ok := f.fail[idx]; ok {
		return nil, err
	}
	return f.out, nil
}

type fakeEpisodes struct {
	episodes map[string]*core.Episode
	saveErr  error
	deleted  []int64
}

func key(digestID int64, language, style string) string {
	return fmt.Sprintf("%d/%s/%s", digestID, language, style)
}

func newFakeEpisodes() *fakeEpisodes {
	return &fakeEpisodes{episodes: make(map[string]*core.Episode)}
}

func (f *fakeEpisodes) GetEpisode(digestID int64, language, style string) (*core.Episode, error) {
	return f.episodes[key(digestID, language, style)], nil
}

func (f *fakeEpisodes) SaveEpisode(ep *core.Episode) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	ep.ID = int64(len(f.episodes) + 1)
	f.episodes[key(ep.DigestID, ep.Language, ep.AudioStyle)] = ep
	return nil
}

func (f *fakeEpisodes) DeleteEpisode(id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeBlobs struct {
	saved   map[string][]byte
	deleted []string
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{saved: make(map[string][]byte)} }

func (f *fakeBlobs) Save(filename string, data []byte) (string, string, error) {
	f.saved[filename] = data
	return "/static/audio/" + filename, "static/audio/" + filename, nil
}

func (f *fakeBlobs) Delete(storagePath string) error {
	f.deleted = append(f.deleted, storagePath)
	return nil
}

func TestSynthesizeDigest_CacheHit(t *testing.T) {
	episodes := newFakeEpisodes()
	cached := &core.Episode{ID: 9, DigestID: 1, AudioURL: "/static/audio/old.mp3", Language: "en", AudioStyle: "standard"}
	episodes.episodes[key(1, "en", "standard")] = cached

	speech := &fakeSpeech{}
	s := NewSynthesizer(speech, episodes, newFakeBlobs(), DefaultOptions())

	got, err := s.SynthesizeDigest(context.Background(), 1, "script", "en", "standard", false)
	if err != nil {
		t.Fatalf("SynthesizeDigest failed: %v", err)
	}
	if got != cached {
		t.Error("Expected the cached episode to be returned unchanged")
	}
	if len(speech.calls) != 0 {
		t.Error("A cache hit must not call the TTS provider")
	}
}

func TestSynthesizeDigest_SpeechFailureIsSynthesisError(t *testing.T) {
	speech := &fakeSpeech{fail: map[int]error{0: fmt.Errorf("tts unavailable")}}
	s := NewSynthesizer(speech, newFakeEpisodes(), newFakeBlobs(), DefaultOptions())

	_, err := s.SynthesizeDigest(context.Background(), 1, "short script", "en", "standard", false)
	if !errors.Is(err, core.ErrSynthesisFailed) {
		t.Errorf("Expected ErrSynthesisFailed, got %v", err)
	}
}

func TestSynthesizeDigest_ChunkFailureCleansTempFiles(t *testing.T) {
	tempDir := t.TempDir()

	// Force the chunked path with a tiny limit; fail one chunk so the run
	// aborts after siblings have already written their temp files.
	speech := &fakeSpeech{out: []byte("fake mp3 bytes"), fail: map[int]error{1: fmt.Errorf("chunk exploded")}}
	opts := Options{ChunkCharLimit: 40, ChunkPause: 10 * time.Millisecond, TempDir: tempDir}
	s := NewSynthesizer(speech, newFakeEpisodes(), newFakeBlobs(), opts)

	script := strings.Repeat("One sentence here. ", 20)
	_, err := s.SynthesizeDigest(context.Background(), 2, script, "en", "standard", false)
	if !errors.Is(err, core.ErrSynthesisFailed) {
		t.Fatalf("Expected ErrSynthesisFailed, got %v", err)
	}

	entries, readErr := os.ReadDir(tempDir)
	if readErr != nil {
		t.Fatalf("Failed to read temp dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("Expected temp chunk files to be cleaned up, found %d", len(entries))
	}
}

func TestSynthesizeDigest_SingleCallUnderLimit(t *testing.T) {
	// Invalid MP3 bytes make decoding fail, which is fine: the point is how
	// many synthesis calls were made before that.
	speech := &fakeSpeech{out: []byte("not real mp3")}
	s := NewSynthesizer(speech, newFakeEpisodes(), newFakeBlobs(), DefaultOptions())

	_, _ = s.SynthesizeDigest(context.Background(), 3, "short script", "en", "standard", false)
	if len(speech.calls) != 1 {
		t.Errorf("A script under the limit should synthesize in one call, got %d", len(speech.calls))
	}
	if speech.calls[0] != "short script" {
		t.Errorf("Unexpected synthesized text: %q", speech.calls[0])
	}
}
