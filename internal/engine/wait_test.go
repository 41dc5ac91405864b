package engine

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"
	"time"

	"github.com/OakwoodAI/Automagica/internal/cv"
	"github.com/OakwoodAI/Automagica/internal/logging"
	"github.com/OakwoodAI/Automagica/internal/ocr"
	"github.com/OakwoodAI/Automagica/internal/screen"
	"github.com/OakwoodAI/Automagica/internal/target"
)

// fakeCapturer counts captures and hands out a fixed bitmap.
type fakeCapturer struct {
	captures int
	err      error
}

func (f *fakeCapturer) Capture(region *cv.Region) (*screen.Bitmap, error) {
	f.captures++
	if f.err != nil {
		return nil, f.err
	}
	return &screen.Bitmap{
		Img:    image.NewRGBA(image.Rect(0, 0, 100, 100)),
		Origin: cv.Point{X: 5, Y: 7},
	}, nil
}

func (f *fakeCapturer) Extents() (int, int) { return 1920, 1080 }
func (f *fakeCapturer) ScaleFactor() float64 { return 1.0 }

// scriptedProducer returns the configured candidate sets poll by poll,
// repeating the last one when the script runs out.
type scriptedProducer struct {
	script [][]cv.MatchResult
	err    error
	calls  int
}

func (p *scriptedProducer) Produce(bitmap *screen.Bitmap) ([]cv.MatchResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	i := p.calls
	p.calls++
	if len(p.script) == 0 {
		return nil, nil
	}
	if i >= len(p.script) {
		i = len(p.script) - 1
	}
	return p.script[i], nil
}

func quietLogger() *logging.Logger {
	return logging.New("test").SetOutput(io.Discard)
}

func candidateAt(confidence float64) cv.MatchResult {
	return cv.MatchResult{
		Region:     cv.NewRegion(10, 10, 30, 30),
		Confidence: confidence,
		Source:     cv.SourceTemplate,
	}
}

func validSpec() Spec {
	return Spec{Timeout: 200 * time.Millisecond, Interval: 20 * time.Millisecond, Threshold: 0.8}
}

func TestWaitInvalidSpec(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"zero interval", Spec{Timeout: time.Second, Interval: 0, Threshold: 0.8}},
		{"negative interval", Spec{Timeout: time.Second, Interval: -time.Second, Threshold: 0.8}},
		{"zero timeout", Spec{Timeout: 0, Interval: time.Second, Threshold: 0.8}},
		{"threshold above one", Spec{Timeout: time.Second, Interval: time.Second, Threshold: 1.5}},
		{"negative threshold", Spec{Timeout: time.Second, Interval: time.Second, Threshold: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			capturer := &fakeCapturer{}
			eng := New(capturer, quietLogger())

			_, _, err := eng.Wait(context.Background(), tt.spec, &scriptedProducer{})
			if !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("error = %v, want ErrInvalidSpec", err)
			}
			if capturer.captures != 0 {
				t.Errorf("performed %d captures before failing, want 0", capturer.captures)
			}
		})
	}
}

func TestWaitFoundFirstPoll(t *testing.T) {
	capturer := &fakeCapturer{}
	producer := &scriptedProducer{script: [][]cv.MatchResult{{candidateAt(0.93)}}}
	eng := New(capturer, quietLogger())

	found, origin, err := eng.Wait(context.Background(), validSpec(), producer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if capturer.captures != 1 {
		t.Errorf("captures = %d, want exactly 1", capturer.captures)
	}
	if found.Confidence < 0.8 {
		t.Errorf("confidence = %v, want >= threshold 0.8", found.Confidence)
	}
	if origin != (cv.Point{X: 5, Y: 7}) {
		t.Errorf("origin = %+v, want the bitmap's origin {5 7}", origin)
	}
}

func TestWaitFoundAfterRetries(t *testing.T) {
	capturer := &fakeCapturer{}
	producer := &scriptedProducer{script: [][]cv.MatchResult{
		nil,
		{candidateAt(0.4)}, // visible but below threshold
		{candidateAt(0.95)},
	}}
	eng := New(capturer, quietLogger())

	found, _, err := eng.Wait(context.Background(), validSpec(), producer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturer.captures != 3 {
		t.Errorf("captures = %d, want 3", capturer.captures)
	}
	if found.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", found.Confidence)
	}
}

func TestWaitTimeout(t *testing.T) {
	capturer := &fakeCapturer{}
	producer := &scriptedProducer{script: [][]cv.MatchResult{{candidateAt(0.73)}}}
	eng := New(capturer, quietLogger())

	spec := Spec{Timeout: 100 * time.Millisecond, Interval: 20 * time.Millisecond, Threshold: 0.8}
	start := time.Now()
	_, _, err := eng.Wait(context.Background(), spec, producer)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("error = %v, want ErrTargetNotFound", err)
	}

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error %v is not a *NotFoundError", err)
	}
	if nf.BestConfidence != 0.73 {
		t.Errorf("best confidence = %v, want 0.73", nf.BestConfidence)
	}
	if nf.Elapsed < spec.Timeout {
		t.Errorf("reported elapsed %v shorter than timeout %v", nf.Elapsed, spec.Timeout)
	}
	// Elapsed within [timeout, timeout+interval) plus scheduling slack.
	if elapsed > spec.Timeout+spec.Interval+50*time.Millisecond {
		t.Errorf("wait took %v, far beyond timeout %v", elapsed, spec.Timeout)
	}
}

func TestWaitShortTimeoutSinglePoll(t *testing.T) {
	// timeout < interval: exactly one poll before timing out.
	capturer := &fakeCapturer{}
	producer := &scriptedProducer{}
	eng := New(capturer, quietLogger())

	spec := Spec{Timeout: 10 * time.Millisecond, Interval: 100 * time.Millisecond, Threshold: 0.8}
	_, _, err := eng.Wait(context.Background(), spec, producer)

	if !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("error = %v, want ErrTargetNotFound", err)
	}
	if capturer.captures != 1 {
		t.Errorf("captures = %d, want exactly 1", capturer.captures)
	}
}

func TestWaitCaptureErrorAborts(t *testing.T) {
	capturer := &fakeCapturer{err: screen.ErrCaptureUnavailable}
	eng := New(capturer, quietLogger())

	_, _, err := eng.Wait(context.Background(), validSpec(), &scriptedProducer{})
	if !errors.Is(err, screen.ErrCaptureUnavailable) {
		t.Fatalf("error = %v, want ErrCaptureUnavailable", err)
	}
	if capturer.captures != 1 {
		t.Errorf("captures = %d, want 1 (no retry on fatal errors)", capturer.captures)
	}
}

func TestWaitProducerErrorAborts(t *testing.T) {
	capturer := &fakeCapturer{}
	producer := &scriptedProducer{err: ocr.ErrRecognitionUnavailable}
	eng := New(capturer, quietLogger())

	_, _, err := eng.Wait(context.Background(), validSpec(), producer)
	if !errors.Is(err, ocr.ErrRecognitionUnavailable) {
		t.Fatalf("error = %v, want ErrRecognitionUnavailable", err)
	}
	if capturer.captures != 1 {
		t.Errorf("captures = %d, want 1 (no retry on fatal errors)", capturer.captures)
	}
}

func TestWaitContextCancellation(t *testing.T) {
	capturer := &fakeCapturer{}
	producer := &scriptedProducer{}
	eng := New(capturer, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	spec := Spec{Timeout: 5 * time.Second, Interval: 20 * time.Millisecond, Threshold: 0.8}
	start := time.Now()
	_, _, err := eng.Wait(ctx, spec, producer)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancellation did not interrupt the wait promptly")
	}
}

func TestTemplateProducer(t *testing.T) {
	bitmap := &screen.Bitmap{Img: image.NewRGBA(image.Rect(0, 0, 50, 50))}

	t.Run("oversized template yields no candidates", func(t *testing.T) {
		p := &TemplateProducer{Template: image.NewRGBA(image.Rect(0, 0, 80, 80))}
		candidates, err := p.Produce(bitmap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if candidates != nil {
			t.Errorf("candidates = %+v, want nil", candidates)
		}
	})

	t.Run("fitting template yields one candidate", func(t *testing.T) {
		p := &TemplateProducer{Template: image.NewRGBA(image.Rect(0, 0, 10, 10))}
		candidates, err := p.Produce(bitmap)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("got %d candidates, want 1", len(candidates))
		}
		if candidates[0].Source != cv.SourceTemplate {
			t.Errorf("source = %q, want %q", candidates[0].Source, cv.SourceTemplate)
		}
	})
}

type fakeRecognizer struct {
	words []ocr.Word
}

func (f *fakeRecognizer) Recognize(bitmap *screen.Bitmap) ([]ocr.Word, error) {
	return f.words, nil
}

func TestTextProducer(t *testing.T) {
	rec := &fakeRecognizer{words: []ocr.Word{
		{Text: "Submit", Region: cv.NewRegion(10, 10, 60, 25), Confidence: 0.9},
		{Text: "Cancel", Region: cv.NewRegion(70, 10, 120, 25), Confidence: 0.92},
	}}
	bitmap := &screen.Bitmap{Img: image.NewRGBA(image.Rect(0, 0, 200, 50))}

	p := &TextProducer{Recognizer: rec, Predicate: target.ExactText("submit")}
	candidates, err := p.Produce(bitmap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}
	if candidates[0].Source != cv.SourceOCR {
		t.Errorf("source = %q, want %q", candidates[0].Source, cv.SourceOCR)
	}
}
