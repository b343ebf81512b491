// Package stego holds the shared image buffer and error taxonomy of the
// steganography and fingerprinting packages.
//
// The techniques live in their own packages:
//
//   - lsb: least-significant-bit embedding in raw pixel samples
//   - exifmeta: payloads carried in the EXIF UserComment of a JPEG
//   - phash, similarity: perceptual fingerprints and their comparison
//   - capacity, analysis: carrier capacity and structure reports
//   - signature: content hash signatures stored in EXIF
package stego

import (
	"context"
	"errors"
)

var (
	ErrInvalidImage              = errors.New("invalid image buffer")
	ErrCapacityExceeded          = errors.New("payload exceeds carrier capacity")
	ErrNoMessageFound            = errors.New("no hidden message found")
	ErrTruncatedMessage          = errors.New("end-of-message marker not found")
	ErrMisalignedPayload         = errors.New("payload is not byte aligned")
	ErrCorruptPayload            = errors.New("corrupt payload")
	ErrInvalidContainer          = errors.New("container does not support the technique")
	ErrFingerprintLengthMismatch = errors.New("fingerprint length mismatch")
)

// Embedder hides a payload in the pixel samples of an image.
// The source buffer is never modified.
type Embedder interface {
	Embed(ctx context.Context, img *ImageBuffer, payload []byte) (*ImageBuffer, error)
}

// Extractor recovers a payload hidden by the matching Embedder.
type Extractor interface {
	Extract(ctx context.Context, img *ImageBuffer) ([]byte, error)
}
