package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"newslistener/internal/core"
)

type fakeLLM struct {
	responses []string
	errs      []error
	prompts   []string
}

func (f *fakeLLM) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	i := len(f.prompts) - 1
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var text string
	if i < len(f.responses) {
		text = f.responses[i]
	}
	return text, err
}

func fastOptions() Options {
	return Options{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxContextChars: 30000}
}

const goodScript = "Welcome to your news update. Today we cover several stories in depth."

func TestGenerateScript_Success(t *testing.T) {
	llm := &fakeLLM{responses: []string{goodScript}}
	g := NewGenerator(llm, fastOptions())

	script, err := g.GenerateScript(context.Background(), "News Item: something", "en", "standard")
	if err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if script != goodScript {
		t.Errorf("Unexpected script: %q", script)
	}
	if len(llm.prompts) != 1 {
		t.Errorf("Expected a single attempt, got %d", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "News Item: something") {
		t.Error("Prompt should embed the corpus")
	}
}

func TestGenerateScript_UnsupportedLanguage(t *testing.T) {
	g := NewGenerator(&fakeLLM{}, fastOptions())
	_, err := g.GenerateScript(context.Background(), "corpus", "klingon", "standard")
	if !errors.Is(err, core.ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestGenerateScript_RetriesThenSucceeds(t *testing.T) {
	llm := &fakeLLM{
		responses: []string{"", "", goodScript},
		errs:      []error{fmt.Errorf("rate limited"), nil, nil},
	}
	g := NewGenerator(llm, fastOptions())

	script, err := g.GenerateScript(context.Background(), "corpus", "en", "standard")
	if err != nil {
		t.Fatalf("GenerateScript should succeed on the third attempt: %v", err)
	}
	if script != goodScript {
		t.Errorf("Unexpected script: %q", script)
	}
	if len(llm.prompts) != 3 {
		t.Errorf("Expected 3 attempts, got %d", len(llm.prompts))
	}
}

func TestGenerateScript_AllAttemptsFail(t *testing.T) {
	llm := &fakeLLM{
		errs: []error{fmt.Errorf("boom"), fmt.Errorf("boom"), fmt.Errorf("boom")},
	}
	g := NewGenerator(llm, fastOptions())

	_, err := g.GenerateScript(context.Background(), "corpus", "en", "standard")
	if !errors.Is(err, core.ErrGenerationFailed) {
		t.Errorf("Expected ErrGenerationFailed, got %v", err)
	}
	if len(llm.prompts) != 3 {
		t.Errorf("Expected 3 attempts, got %d", len(llm.prompts))
	}
}

func TestGenerateScript_TooShortOutputFails(t *testing.T) {
	llm := &fakeLLM{responses: []string{"ok."}}
	g := NewGenerator(llm, fastOptions())

	_, err := g.GenerateScript(context.Background(), "corpus", "en", "standard")
	if !errors.Is(err, core.ErrGenerationFailed) {
		t.Errorf("Expected ErrGenerationFailed for a too-short script, got %v", err)
	}
}

func TestGenerateScript_TruncatesOversizedCorpus(t *testing.T) {
	llm := &fakeLLM{responses: []string{goodScript}}
	opts := fastOptions()
	opts.MaxContextChars = 100
	g := NewGenerator(llm, opts)

	corpus := strings.Repeat("n", 500)
	if _, err := g.GenerateScript(context.Background(), corpus, "en", "standard"); err != nil {
		t.Fatalf("GenerateScript failed: %v", err)
	}
	if !strings.Contains(llm.prompts[0], "... (content truncated)") {
		t.Error("Oversized corpus should be truncated with a marker")
	}
	if strings.Contains(llm.prompts[0], strings.Repeat("n", 101)) {
		t.Error("Prompt should not contain the full oversized corpus")
	}
}

func TestGenerateScript_UnknownStyleFallsBackToStandard(t *testing.T) {
	llm := &fakeLLM{responses: []string{goodScript}}
	g := NewGenerator(llm, fastOptions())

	if _, err := g.GenerateScript(context.Background(), "corpus", "en", "no_such_style"); err != nil {
		t.Fatalf("Unknown style should fall back, got error: %v", err)
	}
}

func TestGenerateScript_ContextCancellationStopsRetries(t *testing.T) {
	llm := &fakeLLM{errs: []error{fmt.Errorf("boom"), fmt.Errorf("boom"), fmt.Errorf("boom")}}
	opts := fastOptions()
	opts.InitialDelay = time.Hour
	g := NewGenerator(llm, opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.GenerateScript(ctx, "corpus", "en", "standard")
	if err == nil {
		t.Fatal("Expected an error after cancellation")
	}
	if len(llm.prompts) != 1 {
		t.Errorf("Cancelled context should stop retrying, got %d attempts", len(llm.prompts))
	}
}
