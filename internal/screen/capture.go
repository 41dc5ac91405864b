// Package screen provides bitmap snapshots of the live display for the
// targeting pipeline. Captures are never cached: UI state may have changed
// since the last call, so every invocation re-captures.
package screen

import (
	"errors"
	"image"

	"github.com/OakwoodAI/Automagica/internal/cv"
)

// ErrCaptureUnavailable indicates no display or session is accessible, for
// example a locked or headless session. Fatal; never retried by the engine.
var ErrCaptureUnavailable = errors.New("screen capture unavailable")

// Bitmap is a snapshot of a screen region: pixel data plus the region's
// origin offset in screen coordinates. Immutable once captured.
type Bitmap struct {
	Img    *image.RGBA
	Origin cv.Point
}

// Width returns the pixel width of the snapshot.
func (b *Bitmap) Width() int {
	return b.Img.Bounds().Dx()
}

// Height returns the pixel height of the snapshot.
func (b *Bitmap) Height() int {
	return b.Img.Bounds().Dy()
}

// Capturer is the display/session capability consumed by the wait engine.
type Capturer interface {
	// Capture takes a snapshot of the given region, or the full primary
	// display when region is nil.
	Capture(region *cv.Region) (*Bitmap, error)

	// Extents reports the primary display size in logical pixels.
	Extents() (width, height int)

	// ScaleFactor reports the display scaling factor (1.0 when the platform
	// does not scale).
	ScaleFactor() float64
}

// normalizeRGBA converts any decoded image to *image.RGBA with bounds
// starting at (0, 0), the layout the matcher's scoring loop expects.
func normalizeRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}

	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return out
}
