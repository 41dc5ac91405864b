package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/OakwoodAI/Automagica/internal/coords"
	"github.com/OakwoodAI/Automagica/internal/input"
	"github.com/OakwoodAI/Automagica/internal/ocr"
	"github.com/OakwoodAI/Automagica/internal/target"
)

// FindText captures once and returns every recognized word that satisfies
// the predicate, in reading order.
func (a *Activities) FindText(ctx context.Context, predicate target.Predicate, opts ...Option) ([]ocr.Word, error) {
	if a.recognizer == nil {
		return nil, fmt.Errorf("text operations need a recognizer: %w", ocr.ErrRecognitionUnavailable)
	}

	spec, _ := a.spec(opts)
	bitmap, err := a.capturer.Capture(spec.Region)
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}

	words, err := a.recognizer.Recognize(bitmap)
	if err != nil {
		return nil, err
	}

	if predicate == nil {
		return words, nil
	}
	matched := make([]ocr.Word, 0, len(words))
	for _, word := range words {
		if predicate(word.Text) {
			matched = append(matched, word)
		}
	}
	return matched, nil
}

// ReadScreen captures once and returns all recognized words.
func (a *Activities) ReadScreen(ctx context.Context, opts ...Option) ([]ocr.Word, error) {
	return a.FindText(ctx, nil, opts...)
}

// WaitForText polls the screen until a recognized word satisfies the
// predicate and returns the screen-space point at its center.
func (a *Activities) WaitForText(ctx context.Context, query string, predicate target.Predicate, opts ...Option) (coords.ResolvedPoint, error) {
	return a.waitText(ctx, "wait_text", query, predicate, opts)
}

// ClickText waits for matching text and left-clicks its center.
func (a *Activities) ClickText(ctx context.Context, query string, predicate target.Predicate, opts ...Option) (coords.ResolvedPoint, error) {
	return a.clickText(ctx, "click_text", query, predicate, input.ButtonLeft, false, opts)
}

// DoubleClickText waits for matching text and double-clicks its center.
func (a *Activities) DoubleClickText(ctx context.Context, query string, predicate target.Predicate, opts ...Option) (coords.ResolvedPoint, error) {
	return a.clickText(ctx, "double_click_text", query, predicate, input.ButtonLeft, true, opts)
}

// RightClickText waits for matching text and right-clicks its center.
func (a *Activities) RightClickText(ctx context.Context, query string, predicate target.Predicate, opts ...Option) (coords.ResolvedPoint, error) {
	return a.clickText(ctx, "right_click_text", query, predicate, input.ButtonRight, false, opts)
}

func (a *Activities) waitText(ctx context.Context, operation, query string, predicate target.Predicate, opts []Option) (coords.ResolvedPoint, error) {
	start := time.Now()
	spec, _ := a.spec(opts)

	producer, err := a.textProducer(predicate)
	if err != nil {
		a.record(operation, query, coords.ResolvedPoint{}, time.Since(start), err)
		return coords.ResolvedPoint{}, err
	}

	resolved, err := a.wait(ctx, spec, producer)
	a.record(operation, query, resolved, time.Since(start), err)
	if err != nil {
		return coords.ResolvedPoint{}, err
	}

	a.log.Info("text located", map[string]interface{}{
		"query":      query,
		"x":          resolved.X,
		"y":          resolved.Y,
		"confidence": resolved.Match.Confidence,
	})
	return resolved, nil
}

func (a *Activities) clickText(ctx context.Context, operation, query string, predicate target.Predicate, button input.Button, double bool, opts []Option) (coords.ResolvedPoint, error) {
	start := time.Now()
	spec, _ := a.spec(opts)

	producer, err := a.textProducer(predicate)
	if err != nil {
		a.record(operation, query, coords.ResolvedPoint{}, time.Since(start), err)
		return coords.ResolvedPoint{}, err
	}

	resolved, err := a.wait(ctx, spec, producer)
	if err != nil {
		a.record(operation, query, resolved, time.Since(start), err)
		return coords.ResolvedPoint{}, err
	}

	if double {
		err = a.actuator.DoubleClick(resolved.Point(), button)
	} else {
		err = a.actuator.Click(resolved.Point(), button)
	}
	a.record(operation, query, resolved, time.Since(start), err)
	if err != nil {
		return coords.ResolvedPoint{}, err
	}

	a.log.Info("text clicked", map[string]interface{}{
		"query": query,
		"x":     resolved.X,
		"y":     resolved.Y,
	})
	return resolved, nil
}
