package activities

import (
	"github.com/OakwoodAI/Automagica/internal/cv"
	"github.com/OakwoodAI/Automagica/internal/input"
)

// Direct input operations, no targeting involved. Thin passthroughs to the
// actuator so callers only ever hold an *Activities.

// MoveTo moves the pointer to screen coordinates.
func (a *Activities) MoveTo(x, y int) error {
	return a.actuator.MoveTo(cv.Point{X: x, Y: y})
}

// Click moves to the coordinates and left-clicks.
func (a *Activities) Click(x, y int) error {
	return a.actuator.Click(cv.Point{X: x, Y: y}, input.ButtonLeft)
}

// DoubleClick moves to the coordinates and double-clicks.
func (a *Activities) DoubleClick(x, y int) error {
	return a.actuator.DoubleClick(cv.Point{X: x, Y: y}, input.ButtonLeft)
}

// RightClick moves to the coordinates and right-clicks.
func (a *Activities) RightClick(x, y int) error {
	return a.actuator.Click(cv.Point{X: x, Y: y}, input.ButtonRight)
}

// DragTo presses at the start coordinates, moves, and releases at the end.
func (a *Activities) DragTo(fromX, fromY, toX, toY int) error {
	return a.actuator.Drag(cv.Point{X: fromX, Y: fromY}, cv.Point{X: toX, Y: toY})
}

// TypeText types a string at the current focus.
func (a *Activities) TypeText(text string) error {
	return a.actuator.TypeText(text)
}

// PressKey taps a named key, e.g. "enter" or "tab".
func (a *Activities) PressKey(key string) error {
	return a.actuator.PressKey(key)
}
