package capacity

import "errors"

type Option func(*Analyzer) error

// WithEXIFCapacity sets the EXIF capacity reported for JPEG sources.
func WithEXIFCapacity(n int) Option {
	return func(a *Analyzer) error {
		if n < 0 {
			return errors.New("exif capacity must not be negative")
		}
		a.exifCapacity = n
		return nil
	}
}

// WithRecommendThreshold sets the LSB capacity, in bytes, above which EXIF
// is recommended for JPEG sources.
func WithRecommendThreshold(n int) Option {
	return func(a *Analyzer) error {
		if n < 0 {
			return errors.New("recommend threshold must not be negative")
		}
		a.recommendThreshold = n
		return nil
	}
}
