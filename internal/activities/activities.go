// Package activities is the caller-facing API of the targeting engine. It
// wires capture, matching, recognition, coordinate translation, and input
// actuation into single-call operations like ClickImage and WaitForText.
package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OakwoodAI/Automagica/internal/coords"
	"github.com/OakwoodAI/Automagica/internal/cv"
	"github.com/OakwoodAI/Automagica/internal/engine"
	"github.com/OakwoodAI/Automagica/internal/history"
	"github.com/OakwoodAI/Automagica/internal/input"
	"github.com/OakwoodAI/Automagica/internal/logging"
	"github.com/OakwoodAI/Automagica/internal/ocr"
	"github.com/OakwoodAI/Automagica/internal/screen"
	"github.com/OakwoodAI/Automagica/internal/target"
	"github.com/OakwoodAI/Automagica/pkg/templates"
)

// Defaults are the per-call settings used when no option overrides them.
type Defaults struct {
	Timeout    time.Duration
	Interval   time.Duration
	Confidence float64
	Grayscale  bool
}

// Activities bundles the engine's components behind task-level operations.
type Activities struct {
	engine     *engine.Engine
	capturer   screen.Capturer
	translator *coords.Translator
	actuator   input.Actuator
	recognizer ocr.Recognizer
	registry   *templates.Registry
	store      *history.Store // nil disables operation logging
	log        *logging.Logger
	defaults   Defaults
}

// New assembles the activities facade. The recognizer and store may be nil;
// text operations fail and history is skipped respectively.
func New(
	capturer screen.Capturer,
	actuator input.Actuator,
	recognizer ocr.Recognizer,
	registry *templates.Registry,
	store *history.Store,
	log *logging.Logger,
	defaults Defaults,
) *Activities {
	if log == nil {
		log = logging.New("activities")
	}
	if defaults.Timeout <= 0 {
		defaults.Timeout = 30 * time.Second
	}
	if defaults.Interval <= 0 {
		defaults.Interval = time.Second
	}
	if defaults.Confidence <= 0 {
		defaults.Confidence = 0.8
	}

	w, h := capturer.Extents()
	return &Activities{
		engine:     engine.New(capturer, log),
		capturer:   capturer,
		translator: coords.NewTranslator(w, h, capturer.ScaleFactor()),
		actuator:   actuator,
		recognizer: recognizer,
		registry:   registry,
		store:      store,
		log:        log,
		defaults:   defaults,
	}
}

// History returns the most recent recorded operations, newest first.
func (a *Activities) History(limit int) ([]*history.Operation, error) {
	if a.store == nil {
		return nil, fmt.Errorf("operation history is not enabled")
	}
	return a.store.Recent(limit)
}

// spec builds the wait specification for one call from defaults and options.
func (a *Activities) spec(opts []Option) (engine.Spec, callOptions) {
	call := callOptions{
		timeout:    a.defaults.Timeout,
		interval:   a.defaults.Interval,
		confidence: a.defaults.Confidence,
		grayscale:  a.defaults.Grayscale,
	}
	for _, opt := range opts {
		opt(&call)
	}
	return engine.Spec{
		Timeout:   call.timeout,
		Interval:  call.interval,
		Threshold: call.confidence,
		Region:    call.region,
	}, call
}

// wait runs the poll loop and translates the winning match to screen space.
func (a *Activities) wait(ctx context.Context, spec engine.Spec, producer engine.Producer) (coords.ResolvedPoint, error) {
	match, origin, err := a.engine.Wait(ctx, spec, producer)
	if err != nil {
		return coords.ResolvedPoint{}, err
	}
	resolved, err := a.translator.Translate(*match, origin)
	if err != nil {
		return coords.ResolvedPoint{}, err
	}
	return resolved, nil
}

// record writes the operation outcome to the history store, if one is set.
func (a *Activities) record(operation, targetName string, resolved coords.ResolvedPoint, elapsed time.Duration, err error) {
	if a.store == nil {
		return
	}

	op := &history.Operation{
		Operation: operation,
		Target:    targetName,
		Elapsed:   elapsed,
	}

	switch {
	case err == nil:
		op.Status = history.StatusFound
		op.Confidence = resolved.Match.Confidence
		op.ScreenX = resolved.X
		op.ScreenY = resolved.Y
	case errors.Is(err, engine.ErrTargetNotFound):
		op.Status = history.StatusTimedOut
		op.ErrorMessage = err.Error()
		var nf *engine.NotFoundError
		if errors.As(err, &nf) {
			op.Confidence = nf.BestConfidence
			op.Polls = nf.Polls
		}
	default:
		op.Status = history.StatusFailed
		op.ErrorMessage = err.Error()
	}

	if _, recordErr := a.store.Record(op); recordErr != nil {
		a.log.Warn("failed to record operation", map[string]interface{}{
			"operation": operation,
			"error":     recordErr,
		})
	}
}

// templateProducer looks up a registered template and builds its producer.
// Per-call options still win over manifest settings.
func (a *Activities) templateProducer(name string, spec *engine.Spec, call callOptions) (engine.Producer, error) {
	if a.registry == nil {
		return nil, fmt.Errorf("no template registry configured")
	}
	template, img, err := a.registry.Image(name)
	if err != nil {
		return nil, err
	}

	if !call.confidenceSet && template.Threshold > 0 {
		spec.Threshold = template.Threshold
	}
	if spec.Region == nil && template.Region != nil {
		spec.Region = template.Region
	}

	var matchOpts []cv.Option
	if call.grayscale {
		matchOpts = append(matchOpts, cv.WithGrayscale())
	}
	return &engine.TemplateProducer{Template: img, Options: matchOpts}, nil
}

func (a *Activities) textProducer(predicate target.Predicate) (engine.Producer, error) {
	if a.recognizer == nil {
		return nil, fmt.Errorf("text operations need a recognizer: %w", ocr.ErrRecognitionUnavailable)
	}
	return &engine.TextProducer{Recognizer: a.recognizer, Predicate: predicate}, nil
}
