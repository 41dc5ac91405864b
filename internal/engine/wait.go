// Package engine implements the polling state machine that drives the
// capture → match/recognize → resolve pipeline until a target is found or
// the timeout elapses.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OakwoodAI/Automagica/internal/cv"
	"github.com/OakwoodAI/Automagica/internal/logging"
	"github.com/OakwoodAI/Automagica/internal/screen"
	"github.com/OakwoodAI/Automagica/internal/target"
)

var (
	// ErrInvalidSpec indicates a bad wait specification (caller error),
	// rejected before the first capture.
	ErrInvalidSpec = errors.New("invalid wait specification")

	// ErrTargetNotFound is the expected terminal outcome of exhausting the
	// timeout. Match with errors.Is; the concrete error is a *NotFoundError
	// carrying diagnosis context.
	ErrTargetNotFound = errors.New("target not found")
)

// NotFoundError reports a timed-out wait with enough context to diagnose it:
// how long the engine polled and the best confidence any candidate reached.
type NotFoundError struct {
	Elapsed        time.Duration
	BestConfidence float64 // 0 when no candidate was ever produced
	Polls          int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("target not found after %s (%d polls, best confidence %.2f)",
		e.Elapsed.Round(time.Millisecond), e.Polls, e.BestConfidence)
}

func (e *NotFoundError) Unwrap() error { return ErrTargetNotFound }

// Spec configures one wait operation. Created per call; immutable.
type Spec struct {
	Timeout   time.Duration
	Interval  time.Duration
	Threshold float64    // confidence threshold in [0, 1]
	Region    *cv.Region // capture region; nil means full screen
}

// Validate rejects specifications the poll loop cannot run with.
func (s Spec) Validate() error {
	if s.Interval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %s", ErrInvalidSpec, s.Interval)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidSpec, s.Timeout)
	}
	if s.Threshold < 0 || s.Threshold > 1 {
		return fmt.Errorf("%w: confidence threshold must be in [0, 1], got %v", ErrInvalidSpec, s.Threshold)
	}
	return nil
}

// Producer turns a captured bitmap into match candidates. The two variants
// (template matching and OCR) plug into the same poll loop instead of
// duplicating it.
type Producer interface {
	Produce(bitmap *screen.Bitmap) ([]cv.MatchResult, error)
}

// Engine runs the wait/retry state machine against a capturer.
type Engine struct {
	capturer screen.Capturer
	log      *logging.Logger
}

// New creates an engine.
func New(capturer screen.Capturer, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.New("engine")
	}
	return &Engine{capturer: capturer, log: log}
}

// Wait polls capture → produce → resolve until a candidate passes the
// threshold or the deadline passes. Not-found polls are the normal POLLING
// continuation; any capture/produce error aborts immediately, since those
// indicate environment problems retries cannot fix. The returned match is in
// capture-space; pair it with the bitmap origin for translation.
func (e *Engine) Wait(ctx context.Context, spec Spec, producer Producer) (*cv.MatchResult, cv.Point, error) {
	if err := spec.Validate(); err != nil {
		return nil, cv.Point{}, err
	}

	start := time.Now()
	deadline := start.Add(spec.Timeout)

	best := 0.0
	polls := 0

	for {
		bitmap, err := e.capturer.Capture(spec.Region)
		if err != nil {
			return nil, cv.Point{}, fmt.Errorf("capture failed: %w", err)
		}

		candidates, err := producer.Produce(bitmap)
		if err != nil {
			return nil, cv.Point{}, fmt.Errorf("candidate production failed: %w", err)
		}
		polls++

		if conf, ok := target.Best(candidates); ok && conf > best {
			best = conf
		}

		if found := target.Resolve(candidates, spec.Threshold); found != nil {
			e.log.Debug("target found", map[string]interface{}{
				"confidence": found.Confidence,
				"elapsed":    time.Since(start).Round(time.Millisecond),
				"polls":      polls,
			})
			return found, bitmap.Origin, nil
		}

		e.log.Debug("target not visible yet", map[string]interface{}{
			"best":  best,
			"polls": polls,
		})

		if timedOut := e.sleepUntilNext(ctx, deadline, spec.Interval); timedOut != nil {
			if errors.Is(timedOut, context.Canceled) || errors.Is(timedOut, context.DeadlineExceeded) {
				return nil, cv.Point{}, timedOut
			}
			nf := &NotFoundError{
				Elapsed:        time.Since(start),
				BestConfidence: best,
				Polls:          polls,
			}
			e.log.Warn(nf.Error())
			return nil, cv.Point{}, nf
		}
	}
}

// sleepUntilNext checks the deadline on both sides of the inter-poll sleep.
// Checking before the sleep honors deadlines that pass mid-poll; checking
// after ensures a timeout shorter than the interval still gets exactly one
// poll before timing out.
func (e *Engine) sleepUntilNext(ctx context.Context, deadline time.Time, interval time.Duration) error {
	if !time.Now().Before(deadline) {
		return ErrTargetNotFound
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if !time.Now().Before(deadline) {
		return ErrTargetNotFound
	}
	return nil
}
