// Package podcast orchestrates digest generation from request intake through
// content selection, script generation, and audio synthesis.
package podcast

import (
	"context"
	"encoding/json"
	"fmt"

	"newslistener/internal/core"
	"newslistener/internal/criteria"
	"newslistener/internal/logger"
	"newslistener/internal/selection"
)

// scriptPreviewChars bounds the script excerpt included in status responses.
const scriptPreviewChars = 200

// ContentSelector assembles the news corpus for resolved criteria.
type ContentSelector interface {
	SelectContent(ctx context.Context, c core.GenerationCriteria) (string, error)
}

// ScriptGenerator turns a news corpus into a narration script.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, corpus, language, styleKey string) (string, error)
}

// AudioSynthesizer produces and persists the episode audio for a script.
type AudioSynthesizer interface {
	SynthesizeDigest(ctx context.Context, digestID int64, script, language, styleKey string, force bool) (*core.Episode, error)
}

// Store is the persistence surface the orchestrator needs.
type Store interface {
	CreateDigest(userID int64, canonicalCriteria string) (*core.Digest, error)
	GetDigest(id int64) (*core.Digest, error)
	UpdateDigestStatus(id int64, status core.DigestStatus) error
	SetDigestScript(id int64, script string, status core.DigestStatus) error
	FailDigest(id int64, message string) error
	FindCachedDigest(userID int64, canonicalCriteria, language, style string) (*core.Digest, error)
	GetEpisode(digestID int64, language, style string) (*core.Episode, error)
	GetUserPreference(userID int64) (*core.UserPreference, error)
	GetPredefinedCategory(id int64) (*core.PredefinedCategory, error)
}

// JobRunner executes background work; the podcast service never blocks a
// request on the pipeline.
type JobRunner interface {
	Submit(name string, job func(ctx context.Context) error) error
}

// Result is the immediate answer to a generation request.
type Result struct {
	DigestID int64
	Status   core.DigestStatus
	Cached   bool
	Episode  *core.Episode // populated on cache hits
}

// StatusInfo is a point-in-time view of a digest for polling callers.
type StatusInfo struct {
	Digest        *core.Digest
	ScriptPreview string
	Episode       *core.Episode // populated once audio exists
}

// Service drives the generation pipeline.
type Service struct {
	store    Store
	selector ContentSelector
	scripts  ScriptGenerator
	synth    AudioSynthesizer
	jobs     JobRunner
}

// NewService creates the orchestrator.
func NewService(store Store, selector ContentSelector, scripts ScriptGenerator, synth AudioSynthesizer, jobs JobRunner) *Service {
	return &Service{store: store, selector: selector, scripts: scripts, synth: synth, jobs: jobs}
}

// RequestGeneration resolves the request, answers from the completed-digest
// cache when possible, and otherwise records a new digest and schedules the
// pipeline in the background. The returned digest ID is the caller's handle
// for polling.
//
// Two identical requests arriving before either completes will both run; the
// second one's result simply supersedes the first in the cache.
func (s *Service) RequestGeneration(ctx context.Context, userID int64, req criteria.Request, force bool) (*Result, error) {
	prefs, err := s.store.GetUserPreference(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	var cat *core.PredefinedCategory
	if req.SourceType == core.SourcePredefinedCategory {
		cat, err = s.store.GetPredefinedCategory(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
	}

	resolved, err := criteria.Resolve(req, prefs, cat)
	if err != nil {
		return nil, err
	}
	canonical, err := resolved.CanonicalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize criteria: %w", err)
	}

	if !force {
		cached, err := s.store.FindCachedDigest(userID, canonical, resolved.Language, resolved.AudioStyle)
		if err != nil {
			return nil, fmt.Errorf("cache lookup failed: %w", err)
		}
		if cached != nil {
			episode, err := s.store.GetEpisode(cached.ID, resolved.Language, resolved.AudioStyle)
			if err != nil {
				return nil, fmt.Errorf("cache lookup failed: %w", err)
			}
			logger.Info("Serving digest from cache", "digest_id", cached.ID, "user_id", userID)
			return &Result{DigestID: cached.ID, Status: cached.Status, Cached: true, Episode: episode}, nil
		}
	}

	digest, err := s.store.CreateDigest(userID, canonical)
	if err != nil {
		return nil, fmt.Errorf("failed to create digest: %w", err)
	}

	job := func(jobCtx context.Context) error {
		return s.run(jobCtx, digest.ID, resolved, force)
	}
	if err := s.jobs.Submit(fmt.Sprintf("digest-%d", digest.ID), job); err != nil {
		_ = s.store.FailDigest(digest.ID, "could not schedule generation: "+err.Error())
		return nil, fmt.Errorf("failed to schedule generation: %w", err)
	}

	logger.Info("Scheduled digest generation", "digest_id", digest.ID, "user_id", userID,
		"source_type", string(resolved.SourceType), "language", resolved.Language, "style", resolved.AudioStyle)
	return &Result{DigestID: digest.ID, Status: digest.Status}, nil
}

// run executes the pipeline for one digest. Failures at any stage move the
// digest to FAILED while keeping outputs of the stages that succeeded.
func (s *Service) run(ctx context.Context, digestID int64, c core.GenerationCriteria, force bool) error {
	corpus, err := s.selector.SelectContent(ctx, c)
	if err != nil {
		return s.fail(digestID, err)
	}
	if selection.IsNoContent(corpus) {
		// The sentinel is user-facing guidance, so it becomes the error
		// message verbatim.
		return s.fail(digestID, fmt.Errorf("%s", corpus))
	}

	script, err := s.scripts.GenerateScript(ctx, corpus, c.Language, c.AudioStyle)
	if err != nil {
		return s.fail(digestID, err)
	}
	if err := s.store.SetDigestScript(digestID, script, core.StatusPendingAudio); err != nil {
		return s.fail(digestID, fmt.Errorf("failed to persist script: %w", err))
	}

	if err := s.store.UpdateDigestStatus(digestID, core.StatusProcessingAudio); err != nil {
		return s.fail(digestID, fmt.Errorf("failed to update status: %w", err))
	}
	episode, err := s.synth.SynthesizeDigest(ctx, digestID, script, c.Language, c.AudioStyle, force)
	if err != nil {
		return s.fail(digestID, err)
	}

	if err := s.store.UpdateDigestStatus(digestID, core.StatusCompleted); err != nil {
		return s.fail(digestID, fmt.Errorf("failed to update status: %w", err))
	}
	logger.Info("Digest generation completed", "digest_id", digestID, "audio_url", episode.AudioURL)
	return nil
}

// fail records the failure on the digest and propagates it to the job runner
// for logging.
func (s *Service) fail(digestID int64, cause error) error {
	if err := s.store.FailDigest(digestID, cause.Error()); err != nil {
		logger.Error("Failed to record digest failure", err, "digest_id", digestID)
	}
	return fmt.Errorf("digest %d: %w", digestID, cause)
}

// Status reports the digest's current state, a short script excerpt, and the
// episode once one exists for the digest's language and style.
func (s *Service) Status(digestID int64) (*StatusInfo, error) {
	digest, err := s.store.GetDigest(digestID)
	if err != nil {
		return nil, err
	}
	if digest == nil {
		return nil, fmt.Errorf("digest %d not found", digestID)
	}

	info := &StatusInfo{Digest: digest, ScriptPreview: preview(digest.ScriptText)}

	var c core.GenerationCriteria
	if err := unmarshalCriteria(digest.SourceCriteria, &c); err == nil && c.Language != "" {
		episode, err := s.store.GetEpisode(digestID, c.Language, c.AudioStyle)
		if err != nil {
			return nil, err
		}
		info.Episode = episode
	}
	return info, nil
}

func unmarshalCriteria(data string, c *core.GenerationCriteria) error {
	return json.Unmarshal([]byte(data), c)
}

func preview(script string) string {
	runes := []rune(script)
	if len(runes) <= scriptPreviewChars {
		return script
	}
	return string(runes[:scriptPreviewChars]) + "..."
}
