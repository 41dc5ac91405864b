package cv

// Matching options
type Option func(*matchOptions)

type matchOptions struct {
	region    *Region
	grayscale bool
}

func applyOptions(opts []Option) *matchOptions {
	o := &matchOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSearchRegion limits matching to a sub-region of the bitmap.
func WithSearchRegion(r *Region) Option {
	return func(o *matchOptions) {
		o.region = r
	}
}

// WithGrayscale converts both images to grayscale before scoring. Faster to
// converge on low-color UIs, at the cost of hue sensitivity.
func WithGrayscale() Option {
	return func(o *matchOptions) {
		o.grayscale = true
	}
}
