// Package imgio decodes image files into stego.ImageBuffer and encodes them
// back. PNG, JPEG, GIF, BMP, TIFF and WebP can be read; PNG and JPEG written.
package imgio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	stego "github.com/yyyoichi/stego_zero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	jpgSignature = "\xff\xd8\xff"
	pngSignature = "\x89PNG\r\n\x1a\n"
)

// Decode reads an image and returns it with its format name as registered
// with the image package ("png", "jpeg", ...).
func Decode(r io.Reader) (*stego.ImageBuffer, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", stego.ErrInvalidImage, err)
	}
	return stego.FromImage(img), format, nil
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(b []byte) (*stego.ImageBuffer, string, error) {
	return Decode(bytes.NewReader(b))
}

// EncodePNG writes buf losslessly. Use it for LSB carriers.
func EncodePNG(w io.Writer, buf *stego.ImageBuffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	return png.Encode(w, buf.Image())
}

// EncodeJPEG writes buf at quality q (1-100). JPEG destroys LSB payloads.
func EncodeJPEG(w io.Writer, buf *stego.ImageBuffer, q int) error {
	if err := buf.Validate(); err != nil {
		return err
	}
	return jpeg.Encode(w, buf.Image(), &jpeg.Options{Quality: q})
}

// IsJPEG reports whether b starts with a JPEG SOI marker.
func IsJPEG(b []byte) bool {
	return bytes.HasPrefix(b, []byte(jpgSignature))
}

// IsPNG reports whether b starts with the PNG signature.
func IsPNG(b []byte) bool {
	return bytes.HasPrefix(b, []byte(pngSignature))
}
