// Package input issues mouse and keyboard events at resolved screen
// coordinates. Leaf operations: synchronous, no retry; failures propagate.
package input

import (
	"errors"

	"github.com/OakwoodAI/Automagica/internal/cv"
)

// ErrActuationFailed indicates the OS rejected input injection (for example
// a secure desktop or accessibility policy). Fatal; never retried.
var ErrActuationFailed = errors.New("input actuation failed")

// Button identifies a pointer button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonCenter Button = "center"
)

// Actuator is the input-device capability consumed by the activity layer.
// Every method is a direct OS-level event sequence: move the pointer first
// (with a brief settle delay where the platform needs it for event
// delivery), then press/release.
type Actuator interface {
	MoveTo(p cv.Point) error
	Click(p cv.Point, button Button) error
	DoubleClick(p cv.Point, button Button) error

	// Drag is press-at-from, move-to-to, release. No intermediate waypoints.
	Drag(from, to cv.Point) error

	// TypeText types the string at the current focus.
	TypeText(text string) error

	// PressKey taps a named key (e.g. "enter", "tab", "esc").
	PressKey(key string) error
}
