package lsb

import (
	"bytes"
	"errors"

	"github.com/yyyoichi/stego_zero/bitcodec"
)

type Option func(*Embedder) error

// WithMaxScan bounds extraction to the first n samples. Zero means no bound.
func WithMaxScan(n int) Option {
	return func(e *Embedder) error {
		if n < 0 {
			return errors.New("max scan must not be negative")
		}
		e.maxScan = n
		return nil
	}
}

// WithFrame switches embedding and extraction to the length-prefixed frame
// layout. Both sides must use an equivalent Frame.
func WithFrame(f *bitcodec.Frame) Option {
	return func(e *Embedder) error {
		if f == nil {
			return errors.New("frame must not be nil")
		}
		e.frame = f
		return nil
	}
}

// WithDelimiter switches to a text layout: the payload followed by delim,
// matched on byte boundaries. An empty delim selects DefaultDelimiter.
// A payload containing delim is cut at its first occurrence.
func WithDelimiter(delim []byte) Option {
	return func(e *Embedder) error {
		if len(delim) == 0 {
			delim = []byte(DefaultDelimiter)
		}
		e.delimiter = bytes.Clone(delim)
		return nil
	}
}
