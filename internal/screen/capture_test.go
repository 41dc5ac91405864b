package screen

import (
	"image"
	"image/color"
	"testing"

	"github.com/OakwoodAI/Automagica/internal/cv"
)

func TestNormalizeRGBA(t *testing.T) {
	t.Run("zero-origin RGBA passes through", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 10, 10))
		if got := normalizeRGBA(img); got != img {
			t.Error("expected the same image back for zero-origin RGBA input")
		}
	})

	t.Run("offset bounds are rebased to zero", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(5, 5, 15, 15))
		src.SetRGBA(5, 5, color.RGBA{200, 100, 50, 255})

		got := normalizeRGBA(src)

		if got.Bounds().Min != (image.Point{}) {
			t.Errorf("bounds min = %v, want (0,0)", got.Bounds().Min)
		}
		if got.Bounds().Dx() != 10 || got.Bounds().Dy() != 10 {
			t.Errorf("size = %dx%d, want 10x10", got.Bounds().Dx(), got.Bounds().Dy())
		}
		if px := got.RGBAAt(0, 0); px != (color.RGBA{200, 100, 50, 255}) {
			t.Errorf("pixel at (0,0) = %v, want the source's (5,5) pixel", px)
		}
	})

	t.Run("non-RGBA input is converted", func(t *testing.T) {
		src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		src.SetNRGBA(1, 2, color.NRGBA{10, 20, 30, 255})

		got := normalizeRGBA(src)

		if px := got.RGBAAt(1, 2); px != (color.RGBA{10, 20, 30, 255}) {
			t.Errorf("pixel at (1,2) = %v, want {10 20 30 255}", px)
		}
	})
}

func TestBitmapDimensions(t *testing.T) {
	bm := &Bitmap{
		Img:    image.NewRGBA(image.Rect(0, 0, 640, 480)),
		Origin: cv.Point{X: 100, Y: 50},
	}

	if bm.Width() != 640 || bm.Height() != 480 {
		t.Errorf("size = %dx%d, want 640x480", bm.Width(), bm.Height())
	}
}
