// Package lsb hides payloads in the least significant bit of every color
// sample of an image.
//
// Bit i of the encoded sequence replaces the LSB of Pix[i], scanning samples
// in row-major, channel-interleaved order. The result only survives lossless
// storage such as PNG or BMP.
package lsb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/bitcodec"
	"github.com/yyyoichi/stego_zero/internal/bitconv"
)

// DefaultDelimiter is the text terminator used by WithDelimiter when none is
// given.
const DefaultDelimiter = "<<<END_OF_MESSAGE>>>"

// ctxCheckInterval is the number of samples processed between context checks.
const ctxCheckInterval = 1 << 14

var (
	_ stego.Embedder  = (*Embedder)(nil)
	_ stego.Extractor = (*Embedder)(nil)
)

// Embed hides payload in img with the specified options.
// This is a convenience function that creates an Embedder and calls its Embed method.
func Embed(ctx context.Context, img *stego.ImageBuffer, payload []byte, opts ...Option) (*stego.ImageBuffer, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, img, payload)
}

// Extract recovers a payload from img with the specified options.
// This is a convenience function that creates an Embedder and calls its Extract method.
func Extract(ctx context.Context, img *stego.ImageBuffer, opts ...Option) ([]byte, error) {
	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, img)
}

// Capacity returns the number of bits an image of w×h pixels with c channels
// can carry, and the largest payload in bytes for the marker layout.
func Capacity(w, h, c int) (bits, bytes int) {
	bits = w * h * c
	bytes = max(bits/8-bitcodec.MarkerBits/8, 0)
	return bits, bytes
}

type Embedder struct {
	maxScan   int
	frame     *bitcodec.Frame
	delimiter []byte
}

// New initializes an Embedder. Without options it uses the end-marker layout
// and scans the whole image on extraction.
func New(opts ...Option) (*Embedder, error) {
	e := new(Embedder)
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.frame != nil && e.delimiter != nil {
		return nil, errors.New("frame and delimiter layouts are exclusive")
	}
	return e, nil
}

// Embed returns a copy of img with payload hidden in its sample LSBs.
// It fails with ErrCapacityExceeded when the encoded payload has more bits
// than the image has samples.
func (e *Embedder) Embed(ctx context.Context, img *stego.ImageBuffer, payload []byte) (*stego.ImageBuffer, error) {
	if e.frame != nil {
		seq, err := e.frame.Encode(payload)
		if err != nil {
			return nil, err
		}
		return e.EmbedBits(ctx, img, seq)
	}
	if e.delimiter != nil {
		bits := bitconv.BytesToBools(slices.Concat(payload, e.delimiter))
		return e.EmbedBits(ctx, img, bitcodec.FromBools(bits))
	}
	return e.EmbedBits(ctx, img, bitcodec.Encode(payload))
}

// EmbedBits writes seq into the LSBs of a copy of img.
func (e *Embedder) EmbedBits(ctx context.Context, img *stego.ImageBuffer, seq bitcodec.Sequence) (*stego.ImageBuffer, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if seq.Len() > len(img.Pix) {
		return nil, fmt.Errorf("%w: %d bits for %d samples", stego.ErrCapacityExceeded, seq.Len(), len(img.Pix))
	}
	dst := img.Clone()
	for i := range seq.Len() {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		dst.Pix[i] = dst.Pix[i]&0xFE | seq.Bit(i)
	}
	return dst, nil
}

// Extract reads sample LSBs in order until the payload is complete.
// It fails with ErrNoMessageFound when the scan ends without one.
func (e *Embedder) Extract(ctx context.Context, img *stego.ImageBuffer) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	limit := len(img.Pix)
	if e.maxScan > 0 && e.maxScan < limit {
		limit = e.maxScan
	}
	if e.frame != nil {
		return e.extractFrame(ctx, img.Pix[:limit])
	}
	if e.delimiter != nil {
		return e.extractDelimited(ctx, img.Pix[:limit])
	}

	s := bitcodec.NewScanner()
	for i := range limit {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if s.Push(img.Pix[i]) {
			return s.Payload(), nil
		}
	}
	return nil, fmt.Errorf("%w: no end marker in %d samples", stego.ErrNoMessageFound, limit)
}

func (e *Embedder) extractFrame(ctx context.Context, pix []byte) ([]byte, error) {
	read := func(from, n int) ([]bool, error) {
		bits := make([]bool, n)
		for i := range n {
			if i%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			bits[i] = pix[from+i]&1 == 1
		}
		return bits, nil
	}

	hb := e.frame.HeaderBits()
	if hb > len(pix) {
		return nil, fmt.Errorf("%w: %d samples cannot hold a frame header", stego.ErrNoMessageFound, len(pix))
	}
	header, err := read(0, hb)
	if err != nil {
		return nil, err
	}
	n, err := e.frame.DecodeHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stego.ErrNoMessageFound, err)
	}
	// A random header declares lengths far beyond the image.
	if n > len(pix)/8 || hb+e.frame.PayloadBits(n) > len(pix) {
		return nil, fmt.Errorf("%w: declared length %d exceeds %d samples", stego.ErrNoMessageFound, n, len(pix))
	}
	body, err := read(hb, e.frame.PayloadBits(n))
	if err != nil {
		return nil, err
	}
	return e.frame.DecodePayload(body, n)
}

// extractDelimited reads whole bytes until they end with the delimiter.
func (e *Embedder) extractDelimited(ctx context.Context, pix []byte) ([]byte, error) {
	var out []byte
	for i := 0; i+8 <= len(pix); i += 8 {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var v byte
		for _, s := range pix[i : i+8] {
			v = v<<1 | s&1
		}
		out = append(out, v)
		if bytes.HasSuffix(out, e.delimiter) {
			return out[:len(out)-len(e.delimiter)], nil
		}
	}
	return nil, fmt.Errorf("%w: no delimiter in %d samples", stego.ErrNoMessageFound, len(pix))
}
