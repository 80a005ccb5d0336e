// Package audio converts narration scripts into a single persisted MP3,
// splitting long scripts into speakable chunks and concatenating the
// synthesized pieces with a short silence between them.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"newslistener/internal/core"
	"newslistener/internal/logger"
	"newslistener/internal/prompts"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SpeechClient synthesizes one piece of text to MP3 bytes.
type SpeechClient interface {
	Synthesize(ctx context.Context, text, instructions string) ([]byte, error)
}

// EpisodeStore is the persistence surface the synthesizer needs.
type EpisodeStore interface {
	GetEpisode(digestID int64, language, style string) (*core.Episode, error)
	SaveEpisode(ep *core.Episode) error
	DeleteEpisode(id int64) error
}

// BlobStore persists the final audio artifact.
type BlobStore interface {
	Save(filename string, data []byte) (publicURL, storagePath string, err error)
	Delete(storagePath string) error
}

// Options bound chunking and concatenation.
type Options struct {
	ChunkCharLimit int           // scripts longer than this are split
	ChunkPause     time.Duration // silence inserted between chunks
	TempDir        string        // working dir for per-chunk files; "" = system default
}

// DefaultOptions returns the synthesizer's standard settings.
func DefaultOptions() Options {
	return Options{ChunkCharLimit: 3000, ChunkPause: 200 * time.Millisecond}
}

// Synthesizer drives TTS chunk synthesis and episode persistence.
type Synthesizer struct {
	speech SpeechClient
	store  EpisodeStore
	blobs  BlobStore
	opts   Options
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(speech SpeechClient, store EpisodeStore, blobs BlobStore, opts Options) *Synthesizer {
	if opts.ChunkCharLimit <= 0 {
		opts.ChunkCharLimit = DefaultOptions().ChunkCharLimit
	}
	if opts.ChunkPause <= 0 {
		opts.ChunkPause = DefaultOptions().ChunkPause
	}
	return &Synthesizer{speech: speech, store: store, blobs: blobs, opts: opts}
}

// SynthesizeDigest produces the audio episode for a digest's script. An
// existing episode with audio for the same (digest, language, style) tuple is
// returned unchanged unless force is set, in which case its file and row are
// replaced. Any TTS or audio-processing failure aborts the whole operation
// and is reported as ErrSynthesisFailed; no partial audio survives.
func (s *Synthesizer) SynthesizeDigest(ctx context.Context, digestID int64, script, language, styleKey string, force bool) (*core.Episode, error) {
	if !force {
		existing, err := s.store.GetEpisode(digestID, language, styleKey)
		if err != nil {
			return nil, fmt.Errorf("%w: episode lookup failed: %v", core.ErrSynthesisFailed, err)
		}
		if existing != nil && existing.AudioURL != "" {
			logger.Info("Found cached audio for digest",
				"digest_id", digestID, "language", language, "style", styleKey, "audio_url", existing.AudioURL)
			return existing, nil
		}
	}

	instruction := prompts.BuildTTSInstruction(language, styleKey)

	combined, err := s.synthesizeScript(ctx, digestID, script, instruction)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSynthesisFailed, err)
	}

	var out bytes.Buffer
	if err := combined.EncodeMP3(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSynthesisFailed, err)
	}

	// The old artifact must not leak when regenerating; uniqueness of the new
	// name makes write-then-swap unnecessary.
	if force {
		if err := s.removePrevious(digestID, language, styleKey); err != nil {
			logger.Error("Failed to remove previous episode before regeneration", err, "digest_id", digestID)
		}
	}

	filename := fmt.Sprintf("news_podcast_%d_%s.mp3", digestID, uuid.NewString())
	publicURL, storagePath, err := s.blobs.Save(filename, out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to store audio: %v", core.ErrSynthesisFailed, err)
	}

	episode := &core.Episode{
		DigestID:        digestID,
		AudioURL:        publicURL,
		StoragePath:     storagePath,
		Language:        language,
		AudioStyle:      styleKey,
		DurationSeconds: int(combined.Duration().Round(time.Second).Seconds()),
	}
	if err := s.store.SaveEpisode(episode); err != nil {
		// The episode row is the source of truth; without it the file is an
		// orphan and must go.
		if delErr := s.blobs.Delete(storagePath); delErr != nil {
			logger.Error("Failed to clean up audio after episode save failure", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("%w: failed to save episode: %v", core.ErrSynthesisFailed, err)
	}

	logger.Info("Synthesized digest audio", "digest_id", digestID, "audio_url", publicURL,
		"duration_seconds", episode.DurationSeconds)
	return episode, nil
}

// synthesizeScript produces the combined audio segment for the script,
// chunking when it exceeds the character limit.
func (s *Synthesizer) synthesizeScript(ctx context.Context, digestID int64, script, instruction string) (*Segment, error) {
	if len([]rune(script)) <= s.opts.ChunkCharLimit {
		logger.Info("Script fits in a single synthesis call", "digest_id", digestID, "chars", len(script))
		data, err := s.speech.Synthesize(ctx, script, instruction)
		if err != nil {
			return nil, err
		}
		return DecodeMP3(bytes.NewReader(data))
	}

	chunks := SplitScript(script, s.opts.ChunkCharLimit)
	logger.Info("Split script into chunks", "digest_id", digestID, "chunks", len(chunks))

	tempPaths := make([]string, len(chunks))
	defer func() {
		// Per-chunk files are removed no matter how synthesis ended.
		for _, p := range tempPaths {
			if p == "" {
				continue
			}
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				logger.Warn("Failed to remove temp chunk file", "path", p, "error", err.Error())
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			data, err := s.speech.Synthesize(gctx, chunk, instruction)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			f, err := os.CreateTemp(s.opts.TempDir, "tts_chunk_*.mp3")
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			tempPaths[i] = f.Name()
			if _, err := f.Write(data); err != nil {
				_ = f.Close()
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			return f.Close()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	segments := make([]*Segment, len(tempPaths))
	for i, p := range tempPaths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("failed to reopen chunk %d: %w", i, err)
		}
		seg, err := DecodeMP3(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decode chunk %d: %w", i, err)
		}
		segments[i] = seg
	}
	return Concat(segments, s.opts.ChunkPause)
}

// removePrevious deletes the stored file and row of an existing episode for
// the tuple, if any.
func (s *Synthesizer) removePrevious(digestID int64, language, styleKey string) error {
	old, err := s.store.GetEpisode(digestID, language, styleKey)
	if err != nil || old == nil {
		return err
	}
	if old.StoragePath != "" {
		if err := s.blobs.Delete(old.StoragePath); err != nil {
			logger.Error("Failed to delete old audio file", err, "path", old.StoragePath)
		}
	}
	return s.store.DeleteEpisode(old.ID)
}
