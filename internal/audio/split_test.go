package audio

import (
	"strings"
	"testing"
)

func TestSplitScript_ShortScriptSingleChunk(t *testing.T) {
	script := "This is a short script."
	chunks := SplitScript(script, 3000)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != script {
		t.Errorf("Expected chunk to equal script, got %q", chunks[0])
	}
}

func TestSplitScript_ExactLimitStaysWhole(t *testing.T) {
	script := strings.Repeat("a", 100)
	chunks := SplitScript(script, 100)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk at the exact limit, got %d", len(chunks))
	}
}

func TestSplitScript_OneOverLimitSplits(t *testing.T) {
	script := strings.Repeat("a", 50) + " " + strings.Repeat("b", 50)
	chunks := SplitScript(script, 100)
	if len(chunks) < 2 {
		t.Fatalf("Expected at least 2 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > 100 {
			t.Errorf("Chunk %d exceeds limit: %d runes", i, len([]rune(c)))
		}
	}
}

func TestSplitScript_ParagraphBoundariesRespected(t *testing.T) {
	script := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."
	chunks := SplitScript(script, 3000)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "First paragraph." {
		t.Errorf("Unexpected first chunk: %q", chunks[0])
	}
}

func TestSplitScript_PrefersSentenceBoundary(t *testing.T) {
	sentence := "This is a sentence. "
	script := strings.Repeat(sentence, 20) // 400 chars, one paragraph
	chunks := SplitScript(script, 100)
	for i, c := range chunks {
		if len([]rune(c)) > 100 {
			t.Fatalf("Chunk %d exceeds limit", i)
		}
		if !strings.HasSuffix(c, ".") {
			t.Errorf("Chunk %d should end at a sentence boundary, got %q", i, c)
		}
	}
}

func TestSplitScript_FallsBackToSpace(t *testing.T) {
	script := strings.Repeat("word ", 50) // no sentence punctuation
	chunks := SplitScript(script, 40)
	for i, c := range chunks {
		if len([]rune(c)) > 40 {
			t.Errorf("Chunk %d exceeds limit: %q", i, c)
		}
		if strings.HasSuffix(c, " ") || strings.HasPrefix(c, " ") {
			t.Errorf("Chunk %d not trimmed: %q", i, c)
		}
	}
}

func TestSplitScript_HardCutWithoutAnyBoundary(t *testing.T) {
	script := strings.Repeat("x", 250)
	chunks := SplitScript(script, 100)
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks from a 250-char unbreakable run, got %d", len(chunks))
	}
}

func TestSplitScript_MultiByteSafe(t *testing.T) {
	script := strings.Repeat("ñ", 150)
	chunks := SplitScript(script, 100)
	joined := strings.Join(chunks, "")
	if joined != script {
		t.Error("Multi-byte content was corrupted by splitting")
	}
	for i, c := range chunks {
		if len([]rune(c)) > 100 {
			t.Errorf("Chunk %d exceeds limit in runes", i)
		}
	}
}

func TestSplitScript_ContentPreserved(t *testing.T) {
	script := "Intro sentence one. Intro sentence two.\n\n" +
		strings.Repeat("Body sentence here. ", 30) + "\n\nOutro."
	chunks := SplitScript(script, 120)
	joined := strings.Join(chunks, " ")
	for _, word := range []string{"Intro", "Body", "Outro."} {
		if !strings.Contains(joined, word) {
			t.Errorf("Split lost content containing %q", word)
		}
	}
}

func TestSplitScript_EmptyAndWhitespaceOnly(t *testing.T) {
	if chunks := SplitScript("", 100); len(chunks) != 0 {
		t.Errorf("Expected no chunks for empty script, got %d", len(chunks))
	}
	if chunks := SplitScript("\n\n  \n\n", 100); len(chunks) != 0 {
		t.Errorf("Expected no chunks for whitespace script, got %d", len(chunks))
	}
}
