package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"newslistener/internal/audio"
	"newslistener/internal/config"
	"newslistener/internal/feeds"
	"newslistener/internal/fetch"
	"newslistener/internal/llm"
	"newslistener/internal/logger"
	"newslistener/internal/podcast"
	"newslistener/internal/script"
	"newslistener/internal/selection"
	"newslistener/internal/storage"
	"newslistener/internal/store"
	"newslistener/internal/tts"
	"newslistener/internal/worker"
)

// openStore opens the application database from the configured data dir.
func openStore() (*store.Store, error) {
	st, err := store.NewStore(config.Get().App.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logger.Error("Failed to close store", err)
	}
}

// buildService wires the full generation pipeline. The returned cleanup
// drains background work and closes the store; callers must invoke it before
// exiting or in-flight generation is lost.
func buildService(ctx context.Context) (*podcast.Service, func(), error) {
	cfg := config.Get()

	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	fetcher := fetch.NewFetcher(cfg.News.FetchTimeoutDuration())
	collector := feeds.NewCollector(cfg.News.FetchTimeoutDuration())
	engine := selection.NewEngine(fetcher, collector, selection.Options{
		MaxArticles:      cfg.News.MaxArticles,
		EnrichBelowChars: cfg.News.EnrichBelowChars,
	})

	llmClient, err := llm.NewClient(ctx, cfg.AI.Gemini.Model)
	if err != nil {
		closeStore(st)
		return nil, nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	scripts := script.NewGenerator(llmClient, script.Options{MaxContextChars: cfg.News.MaxContextChars})

	speech, err := tts.NewClient(tts.Config{
		APIKey:     cfg.TTS.APIKey,
		BaseURL:    cfg.TTS.BaseURL,
		Model:      cfg.TTS.Model,
		Voice:      cfg.TTS.Voice,
		HTTPClient: &http.Client{Timeout: cfg.TTS.TimeoutDuration()},
	})
	if err != nil {
		closeStore(st)
		return nil, nil, fmt.Errorf("failed to initialize TTS client: %w", err)
	}

	blobs, err := storage.NewLocalStore(cfg.Storage.AudioDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		closeStore(st)
		return nil, nil, fmt.Errorf("failed to initialize audio storage: %w", err)
	}

	synth := audio.NewSynthesizer(speech, st, blobs, audio.Options{
		ChunkCharLimit: cfg.Audio.ChunkCharLimit,
		ChunkPause:     time.Duration(cfg.Audio.ChunkPauseMS) * time.Millisecond,
		TempDir:        cfg.Audio.TempDir,
	})

	pool := worker.NewPool(2, 16)
	svc := podcast.NewService(st, engine, scripts, synth, pool)

	cleanup := func() {
		pool.Stop()
		closeStore(st)
	}
	return svc, cleanup, nil
}

// statusService builds a service backed only by the store, enough for
// read-only operations that must not require API credentials.
func statusService() (*podcast.Service, func(), error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	return podcast.NewService(st, nil, nil, nil, nil), func() { closeStore(st) }, nil
}
