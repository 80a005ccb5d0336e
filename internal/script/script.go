// Package script generates TTS-ready narration scripts from a news corpus.
package script

import (
	"context"
	"fmt"
	"strings"
	"time"

	"newslistener/internal/core"
	"newslistener/internal/logger"
	"newslistener/internal/prompts"
)

const (
	// maxContextChars bounds the corpus passed into the prompt.
	maxContextChars = 30000

	truncationMarker = "... (content truncated)"

	// minScriptChars is the shortest model output accepted as a script.
	minScriptChars = 20
)

// TextGenerator is the language-model call the generator depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Options tune retry behavior and context bounds.
type Options struct {
	MaxAttempts     int           // total LLM attempts, including the first
	InitialDelay    time.Duration // first retry delay, doubled per attempt
	MaxContextChars int
}

// DefaultOptions returns the generator's standard settings.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:     3,
		InitialDelay:    2 * time.Second,
		MaxContextChars: maxContextChars,
	}
}

// Generator produces narration scripts via a language model.
type Generator struct {
	llm  TextGenerator
	opts Options
}

// NewGenerator creates a script generator.
func NewGenerator(llm TextGenerator, opts Options) *Generator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultOptions().MaxAttempts
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = DefaultOptions().InitialDelay
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = DefaultOptions().MaxContextChars
	}
	return &Generator{llm: llm, opts: opts}
}

// GenerateScript produces a spoken-narration script for the corpus in the
// requested language and style. It fails with ErrUnsupportedLanguage when no
// template exists for the language and with ErrGenerationFailed when the
// model yields unusable output after all retries. An unknown style falls back
// to the standard style.
func (g *Generator) GenerateScript(ctx context.Context, corpus, language, styleKey string) (string, error) {
	template, ok := prompts.ScriptTemplate(language)
	if !ok {
		return "", fmt.Errorf("%w: %q (supported: %s)", core.ErrUnsupportedLanguage, language, strings.Join(prompts.SupportedLanguages(), ", "))
	}
	style := prompts.Style(styleKey)

	if len(corpus) > g.opts.MaxContextChars {
		logger.Warn("News content exceeds context limit, truncating",
			"length", len(corpus), "limit", g.opts.MaxContextChars)
		corpus = corpus[:g.opts.MaxContextChars] + truncationMarker
	}

	prompt := prompts.RenderScriptPrompt(template, style.ScriptInstruction, corpus)

	text, err := g.invokeWithRetry(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrGenerationFailed, err)
	}
	if len(strings.TrimSpace(text)) < minScriptChars {
		return "", fmt.Errorf("%w: generated script was too short (%d chars)", core.ErrGenerationFailed, len(strings.TrimSpace(text)))
	}

	logger.Info("Generated news script", "language", language, "style", styleKey, "chars", len(text))
	return text, nil
}

// invokeWithRetry calls the model with bounded exponential backoff. Empty
// output counts as a transient failure.
func (g *Generator) invokeWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	delay := g.opts.InitialDelay
	for attempt := 1; attempt <= g.opts.MaxAttempts; attempt++ {
		logger.Info("Invoking language model", "attempt", attempt, "max_attempts", g.opts.MaxAttempts)
		text, err := g.llm.GenerateText(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		if err == nil {
			err = fmt.Errorf("model returned an empty script")
		}
		lastErr = err
		logger.Warn("Language model attempt failed", "attempt", attempt, "error", err.Error())

		if attempt == g.opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return "", fmt.Errorf("after %d attempts: %w", g.opts.MaxAttempts, lastErr)
}
