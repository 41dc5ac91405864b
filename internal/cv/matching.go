package cv

import (
	"image"
	"math"
)

// Source tags where a match result came from.
type Source string

const (
	SourceTemplate Source = "template"
	SourceOCR      Source = "ocr"
)

// MatchResult is one candidate target placement: its rectangle in
// capture-space and the similarity score that produced it.
type MatchResult struct {
	Region     Region
	Confidence float64 // always within [0, 1]
	Source     Source
}

// Scores this close together are considered a tie; the topmost-then-leftmost
// placement wins so repeated runs stay deterministic.
const tieEpsilon = 1e-6

// FindTemplate scores the template against every translation within the
// bitmap using normalized cross-correlation and returns the best placement.
// Returns nil (not an error) when the template is larger than the bitmap in
// either dimension or the search region leaves no valid placement. Matching
// is exact-scale: callers needing scale tolerance must supply rescaled
// templates.
func FindTemplate(bitmap, template *image.RGBA, opts ...Option) *MatchResult {
	o := applyOptions(opts)

	if o.grayscale {
		bitmap = toGrayscale(bitmap)
		template = toGrayscale(template)
	}

	bounds := bitmap.Bounds()
	tw := template.Bounds().Dx()
	th := template.Bounds().Dy()

	if tw > bounds.Dx() || th > bounds.Dy() {
		return nil
	}

	search := bounds
	if o.region != nil {
		search = o.region.ToImageRectangle().Intersect(bounds)
		if search.Empty() {
			return nil
		}
	}

	maxX := search.Max.X - tw
	maxY := search.Max.Y - th
	if maxX < search.Min.X || maxY < search.Min.Y {
		return nil
	}

	best := -1.0
	var bestAt image.Point

	// Row-major scan: the first placement to beat the running best by more
	// than the epsilon is kept, which makes ties resolve topmost-then-leftmost.
	for y := search.Min.Y; y <= maxY; y++ {
		for x := search.Min.X; x <= maxX; x++ {
			score := normalizedCrossCorrelation(bitmap, template, x, y, tw, th)
			if score > best+tieEpsilon {
				best = score
				bestAt = image.Point{X: x, Y: y}
			}
		}
	}

	return &MatchResult{
		Region:     NewRegion(bestAt.X, bestAt.Y, bestAt.X+tw, bestAt.Y+th),
		Confidence: best,
		Source:     SourceTemplate,
	}
}

// normalizedCrossCorrelation computes the correlation coefficient between the
// template and the bitmap window at (x, y) across the RGB channels, mapped
// from [-1, 1] to [0, 1].
func normalizedCrossCorrelation(bitmap, template *image.RGBA, x, y, w, h int) float64 {
	var sumB, sumT, sumBT, sumBB, sumTT float64
	n := float64(w * h * 3)

	tmin := template.Bounds().Min
	for ty := 0; ty < h; ty++ {
		bIdx := bitmap.PixOffset(x, y+ty)
		tIdx := template.PixOffset(tmin.X, tmin.Y+ty)
		for tx := 0; tx < w; tx++ {
			for c := 0; c < 3; c++ {
				b := float64(bitmap.Pix[bIdx+c])
				t := float64(template.Pix[tIdx+c])
				sumB += b
				sumT += t
				sumBT += b * t
				sumBB += b * b
				sumTT += t * t
			}
			bIdx += 4
			tIdx += 4
		}
	}

	numerator := sumBT - sumB*sumT/n
	denomB := math.Sqrt(sumBB - sumB*sumB/n)
	denomT := math.Sqrt(sumTT - sumT*sumT/n)

	if denomB == 0 && denomT == 0 {
		// Both windows are flat; identical means perfect correlation.
		if math.Abs(sumB-sumT) < 1e-9 {
			return 1.0
		}
		return 0.5
	}
	if denomB == 0 || denomT == 0 {
		return 0.5
	}

	return (numerator/(denomB*denomT) + 1.0) / 2.0
}

// Crop extracts a rectangular sub-image. The returned image has its own
// backing store with bounds starting at (0, 0).
func Crop(img *image.RGBA, r Region) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, r.Width(), r.Height()))
	for y := r.Y1; y < r.Y2; y++ {
		for x := r.X1; x < r.X2; x++ {
			out.SetRGBA(x-r.X1, y-r.Y1, img.RGBAAt(x, y))
		}
	}
	return out
}

// toGrayscale converts an RGBA image to grayscale using the luminance
// formula, keeping the RGBA layout so the scoring loop is unchanged.
func toGrayscale(img *image.RGBA) *image.RGBA {
	bounds := img.Bounds()
	gray := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := img.PixOffset(bounds.Min.X, y)
		dst := gray.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r := img.Pix[src]
			g := img.Pix[src+1]
			b := img.Pix[src+2]

			v := uint8((int(r)*299 + int(g)*587 + int(b)*114) / 1000)

			gray.Pix[dst] = v
			gray.Pix[dst+1] = v
			gray.Pix[dst+2] = v
			gray.Pix[dst+3] = 255
			src += 4
			dst += 4
		}
	}

	return gray
}
