package screen

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/OakwoodAI/Automagica/internal/cv"
)

// DisplayCapturer captures from the primary display via robotgo.
type DisplayCapturer struct{}

// NewDisplayCapturer creates a capturer for the primary display. Fails with
// ErrCaptureUnavailable when no display can be queried (headless session).
func NewDisplayCapturer() (*DisplayCapturer, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: no usable display (reported %dx%d)", ErrCaptureUnavailable, w, h)
	}
	return &DisplayCapturer{}, nil
}

// Capture takes a fresh snapshot of the region, or the full primary display
// when region is nil. The region is clipped to the display extents before
// capturing so the returned bitmap's origin is always on-screen.
func (c *DisplayCapturer) Capture(region *cv.Region) (*Bitmap, error) {
	if region == nil {
		captured, err := robotgo.CaptureImg()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
		}
		return &Bitmap{Img: normalizeRGBA(captured), Origin: cv.Point{}}, nil
	}

	clipped, err := c.clip(*region)
	if err != nil {
		return nil, err
	}

	captured, err := robotgo.CaptureImg(clipped.X1, clipped.Y1, clipped.Width(), clipped.Height())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}

	return &Bitmap{Img: normalizeRGBA(captured), Origin: cv.Point{X: clipped.X1, Y: clipped.Y1}}, nil
}

// Extents reports the primary display size.
func (c *DisplayCapturer) Extents() (int, int) {
	return robotgo.GetScreenSize()
}

// ScaleFactor reports the display scaling factor.
func (c *DisplayCapturer) ScaleFactor() float64 {
	if f := robotgo.ScaleF(); f > 0 {
		return f
	}
	return 1.0
}

func (c *DisplayCapturer) clip(r cv.Region) (cv.Region, error) {
	w, h := c.Extents()
	clipped := cv.Region{
		X1: max(r.X1, 0),
		Y1: max(r.Y1, 0),
		X2: min(r.X2, w),
		Y2: min(r.Y2, h),
	}
	if clipped.Empty() {
		return cv.Region{}, fmt.Errorf("%w: capture region %+v is outside the %dx%d display", ErrCaptureUnavailable, r, w, h)
	}
	return clipped, nil
}
