package exifmeta

import (
	"errors"

	"github.com/yyyoichi/stego_zero/internal/jpegseg"
)

type Option func(*Embedder) error

// WithQuality sets the JPEG quality used when re-encoding, 1 to 100.
func WithQuality(q int) Option {
	return func(e *Embedder) error {
		if q < 1 || q > 100 {
			return errors.New("quality must be within 1 and 100")
		}
		e.quality = q
		return nil
	}
}

// WithMaxCommentBytes bounds the encoded UserComment. The APP1 segment
// holding all EXIF data cannot exceed 64 KiB, which caps the limit.
func WithMaxCommentBytes(n int) Option {
	return func(e *Embedder) error {
		if n <= len(asciiCode) || n > jpegseg.MaxSegmentData {
			return errors.New("max comment bytes out of range")
		}
		e.maxComment = n
		return nil
	}
}
