// Package target unifies template-match and OCR candidates into a single
// "found target" decision: threshold filtering and deterministic selection
// among qualifying candidates.
package target

import (
	"regexp"
	"strings"

	"github.com/OakwoodAI/Automagica/internal/cv"
	"github.com/OakwoodAI/Automagica/internal/ocr"
)

// Confidences this close together are a tie; the topmost-then-leftmost
// candidate wins so selection is deterministic across runs.
const tieEpsilon = 1e-6

// Predicate decides whether a recognized text fragment qualifies as the
// target. The same predicate the wait call received is applied to every
// candidate of a poll.
type Predicate func(text string) bool

// ExactText matches the fragment exactly, ignoring case. This mirrors how
// on-screen labels are usually addressed.
func ExactText(want string) Predicate {
	return func(text string) bool {
		return strings.EqualFold(text, want)
	}
}

// ContainsText matches fragments containing the substring, ignoring case.
func ContainsText(want string) Predicate {
	lower := strings.ToLower(want)
	return func(text string) bool {
		return strings.Contains(strings.ToLower(text), lower)
	}
}

// MatchPattern matches fragments against a compiled regular expression.
func MatchPattern(re *regexp.Regexp) Predicate {
	return func(text string) bool {
		return re.MatchString(text)
	}
}

// FromWords converts OCR words that satisfy the predicate into match
// candidates. A nil predicate accepts every word.
func FromWords(words []ocr.Word, pred Predicate) []cv.MatchResult {
	var candidates []cv.MatchResult
	for _, w := range words {
		if pred != nil && !pred(w.Text) {
			continue
		}
		candidates = append(candidates, cv.MatchResult{
			Region:     w.Region,
			Confidence: w.Confidence,
			Source:     cv.SourceOCR,
		})
	}
	return candidates
}

// Resolve selects the winning candidate: highest confidence at or above the
// threshold, ties broken topmost-then-leftmost. Returns nil when no
// candidate qualifies — the expected "not found yet" outcome of a poll, not
// an error.
func Resolve(candidates []cv.MatchResult, threshold float64) *cv.MatchResult {
	var best *cv.MatchResult
	for i := range candidates {
		c := &candidates[i]
		if c.Confidence < threshold {
			continue
		}
		if best == nil || c.Confidence > best.Confidence+tieEpsilon {
			best = c
			continue
		}
		if c.Confidence >= best.Confidence-tieEpsilon && beatsPosition(c.Region, best.Region) {
			best = c
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// Best returns the highest candidate confidence regardless of threshold.
// The engine reports it on timeout to aid diagnosis. The second return is
// false when there were no candidates at all.
func Best(candidates []cv.MatchResult) (float64, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	best := candidates[0].Confidence
	for _, c := range candidates[1:] {
		if c.Confidence > best {
			best = c.Confidence
		}
	}
	return best, true
}

func beatsPosition(a, b cv.Region) bool {
	if a.Y1 != b.Y1 {
		return a.Y1 < b.Y1
	}
	return a.X1 < b.X1
}
