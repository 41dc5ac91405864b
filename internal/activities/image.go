package activities

import (
	"context"
	"time"

	"github.com/OakwoodAI/Automagica/internal/coords"
	"github.com/OakwoodAI/Automagica/internal/input"
)

// WaitForImage polls the screen until the named template appears and returns
// the screen-space point at its center.
func (a *Activities) WaitForImage(ctx context.Context, name string, opts ...Option) (coords.ResolvedPoint, error) {
	return a.waitImage(ctx, "wait_image", name, opts)
}

// LocateImage looks for the template in a single capture, without retrying.
func (a *Activities) LocateImage(ctx context.Context, name string, opts ...Option) (coords.ResolvedPoint, error) {
	opts = append(opts, WithTimeout(time.Nanosecond), WithInterval(time.Hour))
	return a.waitImage(ctx, "locate_image", name, opts)
}

// ClickImage waits for the template and left-clicks its center.
func (a *Activities) ClickImage(ctx context.Context, name string, opts ...Option) (coords.ResolvedPoint, error) {
	return a.clickImage(ctx, "click_image", name, input.ButtonLeft, false, opts)
}

// DoubleClickImage waits for the template and double-clicks its center.
func (a *Activities) DoubleClickImage(ctx context.Context, name string, opts ...Option) (coords.ResolvedPoint, error) {
	return a.clickImage(ctx, "double_click_image", name, input.ButtonLeft, true, opts)
}

// RightClickImage waits for the template and right-clicks its center.
func (a *Activities) RightClickImage(ctx context.Context, name string, opts ...Option) (coords.ResolvedPoint, error) {
	return a.clickImage(ctx, "right_click_image", name, input.ButtonRight, false, opts)
}

func (a *Activities) waitImage(ctx context.Context, operation, name string, opts []Option) (coords.ResolvedPoint, error) {
	start := time.Now()
	spec, call := a.spec(opts)

	producer, err := a.templateProducer(name, &spec, call)
	if err != nil {
		a.record(operation, name, coords.ResolvedPoint{}, time.Since(start), err)
		return coords.ResolvedPoint{}, err
	}

	resolved, err := a.wait(ctx, spec, producer)
	a.record(operation, name, resolved, time.Since(start), err)
	if err != nil {
		return coords.ResolvedPoint{}, err
	}

	a.log.Info("image located", map[string]interface{}{
		"template":   name,
		"x":          resolved.X,
		"y":          resolved.Y,
		"confidence": resolved.Match.Confidence,
	})
	return resolved, nil
}

func (a *Activities) clickImage(ctx context.Context, operation, name string, button input.Button, double bool, opts []Option) (coords.ResolvedPoint, error) {
	start := time.Now()
	spec, call := a.spec(opts)

	producer, err := a.templateProducer(name, &spec, call)
	if err != nil {
		a.record(operation, name, coords.ResolvedPoint{}, time.Since(start), err)
		return coords.ResolvedPoint{}, err
	}

	resolved, err := a.wait(ctx, spec, producer)
	if err != nil {
		a.record(operation, name, resolved, time.Since(start), err)
		return coords.ResolvedPoint{}, err
	}

	if double {
		err = a.actuator.DoubleClick(resolved.Point(), button)
	} else {
		err = a.actuator.Click(resolved.Point(), button)
	}
	a.record(operation, name, resolved, time.Since(start), err)
	if err != nil {
		return coords.ResolvedPoint{}, err
	}

	a.log.Info("image clicked", map[string]interface{}{
		"template": name,
		"x":        resolved.X,
		"y":        resolved.Y,
	})
	return resolved, nil
}
