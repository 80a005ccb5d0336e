package audio

import (
	"testing"
	"time"
)

func TestSilenceDuration(t *testing.T) {
	s := Silence(44100, 200*time.Millisecond)
	got := s.Duration()
	if got != 200*time.Millisecond {
		t.Errorf("Expected 200ms of silence, got %v", got)
	}
}

func TestConcatInsertsGapsBetweenSegmentsOnly(t *testing.T) {
	a := Silence(44100, 1*time.Second)
	b := Silence(44100, 1*time.Second)
	c := Silence(44100, 1*time.Second)

	combined, err := Concat([]*Segment{a, b, c}, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	// 3s of audio plus two 500ms gaps.
	if combined.Duration() != 4*time.Second {
		t.Errorf("Expected 4s combined duration, got %v", combined.Duration())
	}
}

func TestConcatSingleSegmentNoGap(t *testing.T) {
	a := Silence(22050, 1*time.Second)
	combined, err := Concat([]*Segment{a}, time.Second)
	if err != nil {
		t.Fatalf("Concat failed: %v", err)
	}
	if combined.Duration() != 1*time.Second {
		t.Errorf("Expected 1s, got %v", combined.Duration())
	}
}

func TestConcatRejectsMismatchedSampleRates(t *testing.T) {
	a := Silence(44100, time.Second)
	b := Silence(22050, time.Second)
	if _, err := Concat([]*Segment{a, b}, 0); err == nil {
		t.Error("Expected error for mismatched sample rates")
	}
}

func TestConcatRejectsEmptyInput(t *testing.T) {
	if _, err := Concat(nil, 0); err == nil {
		t.Error("Expected error for empty segment list")
	}
}
