package target

import (
	"regexp"
	"testing"

	"github.com/OakwoodAI/Automagica/internal/cv"
	"github.com/OakwoodAI/Automagica/internal/ocr"
)

func candidate(x, y int, confidence float64) cv.MatchResult {
	return cv.MatchResult{
		Region:     cv.NewRegion(x, y, x+20, y+10),
		Confidence: confidence,
		Source:     cv.SourceOCR,
	}
}

func TestResolveHighestConfidence(t *testing.T) {
	// Two regions matching the same text; the more confident one wins.
	candidates := []cv.MatchResult{
		candidate(10, 200, 0.91),
		candidate(300, 40, 0.95),
	}

	got := Resolve(candidates, 0.8)
	if got == nil {
		t.Fatal("expected a resolved candidate, got nil")
	}
	if got.Confidence != 0.95 {
		t.Errorf("resolved confidence = %v, want 0.95", got.Confidence)
	}
}

func TestResolveThreshold(t *testing.T) {
	tests := []struct {
		name       string
		candidates []cv.MatchResult
		threshold  float64
		wantNil    bool
		wantConf   float64
	}{
		{"all below threshold", []cv.MatchResult{candidate(0, 0, 0.5), candidate(5, 5, 0.7)}, 0.8, true, 0},
		{"exactly at threshold qualifies", []cv.MatchResult{candidate(0, 0, 0.8)}, 0.8, false, 0.8},
		{"no candidates", nil, 0.8, true, 0},
		{"one above threshold", []cv.MatchResult{candidate(0, 0, 0.5), candidate(5, 5, 0.9)}, 0.8, false, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.candidates, tt.threshold)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected a resolved candidate, got nil")
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestResolveTieBreak(t *testing.T) {
	topLeft := candidate(10, 10, 0.9)
	lower := candidate(10, 80, 0.9)
	right := candidate(90, 10, 0.9)

	// Same confidences in every input order must resolve to the same region.
	orders := [][]cv.MatchResult{
		{topLeft, lower, right},
		{lower, right, topLeft},
		{right, topLeft, lower},
	}

	for i, candidates := range orders {
		got := Resolve(candidates, 0.8)
		if got == nil {
			t.Fatalf("order %d: expected a candidate, got nil", i)
		}
		if got.Region != topLeft.Region {
			t.Errorf("order %d: resolved %+v, want topmost-leftmost %+v", i, got.Region, topLeft.Region)
		}
	}
}

func TestResolveTieBreakSameRow(t *testing.T) {
	left := candidate(10, 50, 0.9)
	right := candidate(200, 50, 0.9)

	got := Resolve([]cv.MatchResult{right, left}, 0.8)
	if got == nil || got.Region != left.Region {
		t.Fatalf("resolved %+v, want leftmost %+v", got, left.Region)
	}
}

func TestFromWords(t *testing.T) {
	words := []ocr.Word{
		{Text: "INVOICE", Region: cv.NewRegion(10, 10, 80, 25), Confidence: 0.91},
		{Text: "Invoice", Region: cv.NewRegion(10, 200, 80, 215), Confidence: 0.95},
		{Text: "Total", Region: cv.NewRegion(10, 400, 50, 415), Confidence: 0.99},
	}

	t.Run("exact match is case-insensitive", func(t *testing.T) {
		got := FromWords(words, ExactText("INVOICE"))
		if len(got) != 2 {
			t.Fatalf("got %d candidates, want 2", len(got))
		}
		for _, c := range got {
			if c.Source != cv.SourceOCR {
				t.Errorf("source = %q, want %q", c.Source, cv.SourceOCR)
			}
		}
	})

	t.Run("substring match", func(t *testing.T) {
		if got := FromWords(words, ContainsText("voi")); len(got) != 2 {
			t.Fatalf("got %d candidates, want 2", len(got))
		}
	})

	t.Run("pattern match", func(t *testing.T) {
		if got := FromWords(words, MatchPattern(regexp.MustCompile(`^Tot`))); len(got) != 1 {
			t.Fatalf("got %d candidates, want 1", len(got))
		}
	})

	t.Run("nil predicate accepts everything", func(t *testing.T) {
		if got := FromWords(words, nil); len(got) != 3 {
			t.Fatalf("got %d candidates, want 3", len(got))
		}
	})
}

func TestResolveScenarioInvoice(t *testing.T) {
	// OCR predicate matched two regions with confidences 0.91 and 0.95;
	// the resolver must select the 0.95 region.
	words := []ocr.Word{
		{Text: "INVOICE", Region: cv.NewRegion(40, 120, 140, 140), Confidence: 0.91},
		{Text: "INVOICE", Region: cv.NewRegion(40, 480, 140, 500), Confidence: 0.95},
	}

	got := Resolve(FromWords(words, ExactText("INVOICE")), 0.8)
	if got == nil {
		t.Fatal("expected a resolved candidate, got nil")
	}
	if got.Region != cv.NewRegion(40, 480, 140, 500) {
		t.Errorf("resolved %+v, want the 0.95 region", got.Region)
	}
}

func TestBest(t *testing.T) {
	if _, ok := Best(nil); ok {
		t.Error("Best(nil) reported a value")
	}

	best, ok := Best([]cv.MatchResult{candidate(0, 0, 0.3), candidate(0, 0, 0.72), candidate(0, 0, 0.1)})
	if !ok || best != 0.72 {
		t.Errorf("Best = (%v, %v), want (0.72, true)", best, ok)
	}
}
