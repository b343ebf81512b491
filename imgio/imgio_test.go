package imgio

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/lsb"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func gradient(w, h int) *stego.ImageBuffer {
	img := stego.NewImageBuffer(w, h)
	for y := range h {
		for x := range w {
			i := (y*w + x) * 3
			img.Pix[i] = uint8(x * 255 / w)
			img.Pix[i+1] = uint8(y * 255 / h)
			img.Pix[i+2] = uint8((x + y) * 255 / (w + h))
		}
	}
	return img
}

func TestPNGRoundTrip(t *testing.T) {
	src := gradient(40, 30)
	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, src))
	assert.True(t, IsPNG(buf.Bytes()))
	assert.False(t, IsJPEG(buf.Bytes()))

	got, format, err := DecodeBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, src, got)
}

func TestLSBSurvivesPNG(t *testing.T) {
	ctx := context.Background()
	marked, err := lsb.Embed(ctx, gradient(20, 20), []byte("HELLO"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, marked))
	decoded, _, err := DecodeBytes(buf.Bytes())
	require.NoError(t, err)

	got, err := lsb.Extract(ctx, decoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("HELLO"), got)
}

func TestDecodeFormats(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range 64 {
		src.SetNRGBA(i%8, i/8, color.NRGBA{uint8(i * 4), uint8(255 - i), 9, 255})
	}
	test := []struct {
		name   string
		format string
		encode func(*bytes.Buffer) error
	}{
		{name: "bmp", format: "bmp", encode: func(b *bytes.Buffer) error { return bmp.Encode(b, src) }},
		{name: "tiff", format: "tiff", encode: func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) }},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.encode(&buf))
			got, format, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, stego.FromImage(src), got)
		})
	}
}

func TestJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJPEG(&buf, gradient(16, 16), 90))
	assert.True(t, IsJPEG(buf.Bytes()))

	got, format, err := DecodeBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 16, got.Width)
}

func TestDecodeInvalid(t *testing.T) {
	_, _, err := DecodeBytes([]byte("not an image"))
	assert.ErrorIs(t, err, stego.ErrInvalidImage)

	assert.ErrorIs(t, EncodePNG(&bytes.Buffer{}, &stego.ImageBuffer{}), stego.ErrInvalidImage)
}
