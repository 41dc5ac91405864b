package input

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/OakwoodAI/Automagica/internal/cv"
)

// DefaultSettleDelay is how long the pointer rests after a move before a
// press/release, so slower toolkits see the hover before the click.
const DefaultSettleDelay = 50 * time.Millisecond

// RobotActuator drives the real mouse and keyboard through robotgo.
type RobotActuator struct {
	settle time.Duration
}

// NewRobotActuator creates an actuator with the default settle delay.
func NewRobotActuator() *RobotActuator {
	return &RobotActuator{settle: DefaultSettleDelay}
}

// WithSettleDelay overrides the post-move settle delay.
func (a *RobotActuator) WithSettleDelay(d time.Duration) *RobotActuator {
	a.settle = d
	return a
}

// MoveTo moves the pointer to the point and lets it settle.
func (a *RobotActuator) MoveTo(p cv.Point) error {
	if p.X < 0 || p.Y < 0 {
		return fmt.Errorf("%w: negative coordinates (%d, %d)", ErrActuationFailed, p.X, p.Y)
	}
	robotgo.Move(p.X, p.Y)
	a.wait()
	return nil
}

// Click moves to the point, settles, then presses and releases the button.
func (a *RobotActuator) Click(p cv.Point, button Button) error {
	if err := a.MoveTo(p); err != nil {
		return err
	}
	robotgo.Click(string(button), false)
	return nil
}

// DoubleClick moves to the point, settles, then issues a double click.
func (a *RobotActuator) DoubleClick(p cv.Point, button Button) error {
	if err := a.MoveTo(p); err != nil {
		return err
	}
	robotgo.Click(string(button), true)
	return nil
}

// Drag presses at from, moves to to, and releases. No waypoints.
func (a *RobotActuator) Drag(from, to cv.Point) error {
	if err := a.MoveTo(from); err != nil {
		return err
	}
	if err := robotgo.Toggle("left", "down"); err != nil {
		return fmt.Errorf("%w: press: %v", ErrActuationFailed, err)
	}
	if err := a.MoveTo(to); err != nil {
		// Release before surfacing the error so the button isn't left held.
		robotgo.Toggle("left", "up")
		return err
	}
	if err := robotgo.Toggle("left", "up"); err != nil {
		return fmt.Errorf("%w: release: %v", ErrActuationFailed, err)
	}
	return nil
}

// TypeText types the string at the current focus.
func (a *RobotActuator) TypeText(text string) error {
	robotgo.TypeStr(text)
	return nil
}

// PressKey taps a named key.
func (a *RobotActuator) PressKey(key string) error {
	if err := robotgo.KeyTap(key); err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrActuationFailed, key, err)
	}
	return nil
}

func (a *RobotActuator) wait() {
	if a.settle > 0 {
		robotgo.MilliSleep(int(a.settle / time.Millisecond))
	}
}
