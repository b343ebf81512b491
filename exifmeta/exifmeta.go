// Package exifmeta carries payloads in the EXIF UserComment of JPEG files.
//
// The comment is the 8-byte character code "ASCII\0\0\0" followed by the
// standard base64 encoding of the payload. Embed re-encodes the image; the
// payload survives pixel-level edits but not metadata stripping.
package exifmeta

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/imgio"
	"github.com/yyyoichi/stego_zero/internal/exif"
	"github.com/yyyoichi/stego_zero/internal/jpegseg"
)

const (
	DefaultQuality = 95
	// MaxCommentBytes bounds the encoded UserComment, character code included.
	MaxCommentBytes = 32768
)

var asciiCode = []byte("ASCII\x00\x00\x00")

// Embed hides payload in the UserComment of a JPEG with the default options.
// This is a convenience function that creates an Embedder and calls its Embed method.
func Embed(jpegBytes, payload []byte) ([]byte, error) {
	e, _ := New()
	return e.Embed(jpegBytes, payload)
}

// Extract returns the payload in the UserComment of a JPEG.
// ok is false when the file has no EXIF data or no comment in this format.
func Extract(jpegBytes []byte) (payload []byte, ok bool, err error) {
	e, _ := New()
	return e.Extract(jpegBytes)
}

type Embedder struct {
	quality    int
	maxComment int
}

// New initializes an Embedder. Images are re-encoded at quality 95 and
// comments are limited to MaxCommentBytes unless options say otherwise.
func New(opts ...Option) (*Embedder, error) {
	e := &Embedder{quality: DefaultQuality, maxComment: MaxCommentBytes}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Capacity returns the largest payload, in bytes, whose comment fits.
func (e *Embedder) Capacity() int {
	return (e.maxComment - len(asciiCode)) / 4 * 3
}

// Embed decodes the JPEG, re-encodes it and writes payload into the
// UserComment. All other EXIF fields of the source are kept.
func (e *Embedder) Embed(jpegBytes, payload []byte) ([]byte, error) {
	comment, err := e.comment(payload)
	if err != nil {
		return nil, err
	}
	tree, err := readTree(jpegBytes)
	if err != nil {
		return nil, err
	}
	out, err := e.reencode(jpegBytes)
	if err != nil {
		return nil, err
	}
	tree.SetUserComment(comment)
	return writeTree(out, tree)
}

// SetComment writes payload into the UserComment without touching the
// compressed image data.
func (e *Embedder) SetComment(jpegBytes, payload []byte) ([]byte, error) {
	comment, err := e.comment(payload)
	if err != nil {
		return nil, err
	}
	tree, err := readTree(jpegBytes)
	if err != nil {
		return nil, err
	}
	tree.SetUserComment(comment)
	return writeTree(jpegBytes, tree)
}

// Reencode decodes and re-encodes the JPEG at the configured quality,
// keeping its EXIF data.
func (e *Embedder) Reencode(jpegBytes []byte) ([]byte, error) {
	tree, err := readTree(jpegBytes)
	if err != nil {
		return nil, err
	}
	out, err := e.reencode(jpegBytes)
	if err != nil {
		return nil, err
	}
	if tree.Root.Len() == 0 {
		return out, nil
	}
	return writeTree(out, tree)
}

// Extract returns the payload stored in the UserComment.
// A file without EXIF, without a UserComment, or with a comment that is not
// ASCII-coded yields ok == false and no error. A comment that is not valid
// base64 is ErrCorruptPayload.
func (e *Embedder) Extract(jpegBytes []byte) ([]byte, bool, error) {
	if !imgio.IsJPEG(jpegBytes) {
		return nil, false, fmt.Errorf("%w: not a jpeg", stego.ErrInvalidContainer)
	}
	f, err := jpegseg.Split(jpegBytes)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", stego.ErrInvalidContainer, err)
	}
	raw, ok := f.Exif()
	if !ok {
		return nil, false, nil
	}
	tree, err := exif.Parse(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", stego.ErrCorruptPayload, err)
	}
	comment, ok := tree.UserComment()
	if !ok || !bytes.HasPrefix(comment, asciiCode) {
		return nil, false, nil
	}
	encoded := bytes.TrimRight(comment[len(asciiCode):], "\x00")
	payload := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(payload, encoded)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", stego.ErrCorruptPayload, err)
	}
	return payload[:n], true, nil
}

func (e *Embedder) comment(payload []byte) ([]byte, error) {
	n := len(asciiCode) + base64.StdEncoding.EncodedLen(len(payload))
	if n > e.maxComment {
		return nil, fmt.Errorf("%w: comment of %d bytes exceeds %d", stego.ErrCapacityExceeded, n, e.maxComment)
	}
	comment := make([]byte, n)
	copy(comment, asciiCode)
	base64.StdEncoding.Encode(comment[len(asciiCode):], payload)
	return comment, nil
}

func (e *Embedder) reencode(jpegBytes []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(jpegBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stego.ErrInvalidContainer, err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// readTree returns the EXIF tree of a JPEG, or an empty tree when it has
// none or it cannot be parsed.
func readTree(jpegBytes []byte) (*exif.Tree, error) {
	if !imgio.IsJPEG(jpegBytes) {
		return nil, fmt.Errorf("%w: not a jpeg", stego.ErrInvalidContainer)
	}
	f, err := jpegseg.Split(jpegBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stego.ErrInvalidContainer, err)
	}
	raw, ok := f.Exif()
	if !ok {
		return exif.New(), nil
	}
	tree, err := exif.Parse(raw)
	if errors.Is(err, exif.ErrMalformed) {
		return exif.New(), nil
	}
	return tree, err
}

func writeTree(jpegBytes []byte, tree *exif.Tree) ([]byte, error) {
	f, err := jpegseg.Split(jpegBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stego.ErrInvalidContainer, err)
	}
	if err := f.SetExif(tree.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %w", stego.ErrCapacityExceeded, err)
	}
	return f.Bytes(), nil
}
