package stego

import (
	"fmt"
	"image"
	"image/color"
)

// Channels is the number of samples per pixel in an ImageBuffer (R, G, B).
const Channels = 3

// ImageBuffer is a decoded RGB image with row-major, channel-interleaved
// 8-bit samples: Pix[(y*Width+x)*Channels+c].
type ImageBuffer struct {
	Width, Height int
	Channels      int
	Pix           []byte
}

// NewImageBuffer allocates a black w×h RGB buffer.
func NewImageBuffer(w, h int) *ImageBuffer {
	return &ImageBuffer{
		Width:    w,
		Height:   h,
		Channels: Channels,
		Pix:      make([]byte, w*h*Channels),
	}
}

// FromImage copies src into a new buffer. Alpha is dropped.
func FromImage(src image.Image) *ImageBuffer {
	b := src.Bounds()
	buf := NewImageBuffer(b.Dx(), b.Dy())
	if nrgba, ok := src.(*image.NRGBA); ok {
		for y := range buf.Height {
			row := nrgba.Pix[nrgba.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := range buf.Width {
				i := (y*buf.Width + x) * Channels
				copy(buf.Pix[i:i+Channels], row[x*4:x*4+Channels])
			}
		}
		return buf
	}
	for y := range buf.Height {
		for x := range buf.Width {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := (y*buf.Width + x) * Channels
			buf.Pix[i] = c.R
			buf.Pix[i+1] = c.G
			buf.Pix[i+2] = c.B
		}
	}
	return buf
}

// Image returns an opaque NRGBA copy of the buffer.
func (b *ImageBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i := range b.Width * b.Height {
		copy(img.Pix[i*4:i*4+Channels], b.Pix[i*Channels:(i+1)*Channels])
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// Len returns the number of samples, W*H*C.
func (b *ImageBuffer) Len() int {
	return b.Width * b.Height * b.Channels
}

// Clone returns a deep copy.
func (b *ImageBuffer) Clone() *ImageBuffer {
	c := *b
	c.Pix = make([]byte, len(b.Pix))
	copy(c.Pix, b.Pix)
	return &c
}

// Validate reports ErrInvalidImage when the buffer shape is inconsistent.
func (b *ImageBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidImage)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidImage, b.Width, b.Height)
	}
	if b.Channels != Channels {
		return fmt.Errorf("%w: %d channels, want %d", ErrInvalidImage, b.Channels, Channels)
	}
	if len(b.Pix) != b.Len() {
		return fmt.Errorf("%w: %d samples, want %d", ErrInvalidImage, len(b.Pix), b.Len())
	}
	return nil
}

// At returns the RGB samples of pixel (x, y).
func (b *ImageBuffer) At(x, y int) (r, g, bl uint8) {
	i := (y*b.Width + x) * b.Channels
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// MeanColor returns the mean of each RGB channel.
func (b *ImageBuffer) MeanColor() (r, g, bl float64) {
	var sum [Channels]uint64
	for i, v := range b.Pix {
		sum[i%Channels] += uint64(v)
	}
	n := float64(len(b.Pix) / Channels)
	if n == 0 {
		return 0, 0, 0
	}
	return float64(sum[0]) / n, float64(sum[1]) / n, float64(sum[2]) / n
}
