package extractor

import "runtime"

// Options provides flexible configuration for feature extraction
type Options struct {
	// GrayLevels is the number of quantized gray levels and the side of
	// the co-occurrence matrix.
	GrayLevels int

	// MaxRunLength caps the run lengths recorded by the run-length
	// engine; longer runs are silently dropped.
	MaxRunLength int

	// MaxWorkers bounds the worker pool in parallel mode. Zero means
	// one worker per CPU.
	MaxWorkers int
}

// DefaultOptions returns the default extraction options
func DefaultOptions() Options {
	return Options{
		GrayLevels:   256,
		MaxRunLength: 50,
		MaxWorkers:   0,
	}
}

// Normalize clamps out-of-range values back to their defaults.
func (o Options) Normalize() Options {
	if o.GrayLevels < 2 || o.GrayLevels > 256 {
		o.GrayLevels = 256
	}
	if o.MaxRunLength < 1 {
		o.MaxRunLength = 50
	}
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = runtime.NumCPU()
	}
	return o
}

// WithGrayLevels returns options with a custom gray-level count.
func (o Options) WithGrayLevels(n int) Options {
	o.GrayLevels = n
	return o
}

// WithRunLength returns options with a custom run-length cap.
func (o Options) WithRunLength(n int) Options {
	o.MaxRunLength = n
	return o
}

// WithWorkers returns options with a custom worker bound.
func (o Options) WithWorkers(n int) Options {
	o.MaxWorkers = n
	return o
}
