// Package coords maps match rectangles from capture-space to the absolute
// coordinates the input device understands.
package coords

import (
	"errors"
	"fmt"
	"math"

	"github.com/OakwoodAI/Automagica/internal/cv"
)

// ErrOutOfBounds indicates a translated point fell outside the known screen
// extents. This flags a capture/bounds mismatch; the point is rejected, never
// silently clamped.
var ErrOutOfBounds = errors.New("resolved point out of screen bounds")

// ResolvedPoint is the terminal artifact of translation: an absolute
// screen coordinate plus the match that produced it. Consumed exactly once
// by the input actuator.
type ResolvedPoint struct {
	X, Y  int
	Match cv.MatchResult
}

// Point returns the coordinate as a cv.Point.
func (p ResolvedPoint) Point() cv.Point {
	return cv.Point{X: p.X, Y: p.Y}
}

// Translator converts capture-space rectangles into screen-space input
// coordinates. Display-scaling compensation is applied here and only here,
// so every locate/click operation gets the same policy.
type Translator struct {
	screenW, screenH int
	scale            float64
}

// NewTranslator creates a translator for a display of the given logical
// extents and scaling factor. A scale of 0 is treated as unscaled.
func NewTranslator(screenW, screenH int, scale float64) *Translator {
	if scale <= 0 {
		scale = 1.0
	}
	return &Translator{screenW: screenW, screenH: screenH, scale: scale}
}

// Translate maps the rectangle's center point from capture-space to absolute
// screen-space: add the capture origin, then divide by the display scaling
// factor, since input APIs speak physical pixels while captures may be taken
// in logical pixels. A pure function of its inputs: identical arguments
// always yield the identical ResolvedPoint.
func (t *Translator) Translate(match cv.MatchResult, captureOrigin cv.Point) (ResolvedPoint, error) {
	center := match.Region.Center()
	x := int(math.Round(float64(captureOrigin.X+center.X) / t.scale))
	y := int(math.Round(float64(captureOrigin.Y+center.Y) / t.scale))

	if x < 0 || y < 0 || x >= t.screenW || y >= t.screenH {
		return ResolvedPoint{}, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrOutOfBounds, x, y, t.screenW, t.screenH)
	}

	return ResolvedPoint{X: x, Y: y, Match: match}, nil
}
