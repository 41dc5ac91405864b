package activities

import (
	"time"

	"github.com/OakwoodAI/Automagica/internal/cv"
)

// callOptions carries the per-call settings after applying defaults and
// option overrides.
type callOptions struct {
	timeout       time.Duration
	interval      time.Duration
	confidence    float64
	confidenceSet bool
	region        *cv.Region
	grayscale     bool
}

// Option adjusts a single operation call.
type Option func(*callOptions)

// WithTimeout overrides how long the operation polls before giving up.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) { o.timeout = d }
}

// WithInterval overrides the delay between polls.
func WithInterval(d time.Duration) Option {
	return func(o *callOptions) { o.interval = d }
}

// WithConfidence overrides the confidence threshold. It also takes precedence
// over a template's manifest threshold.
func WithConfidence(threshold float64) Option {
	return func(o *callOptions) {
		o.confidence = threshold
		o.confidenceSet = true
	}
}

// WithRegion restricts capture and search to a screen region.
func WithRegion(region cv.Region) Option {
	return func(o *callOptions) { o.region = &region }
}

// WithGrayscale matches on luminance only, trading color discrimination
// for speed.
func WithGrayscale() Option {
	return func(o *callOptions) { o.grayscale = true }
}
