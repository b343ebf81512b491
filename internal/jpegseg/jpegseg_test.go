package jpegseg

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeJPEG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8)), nil))
	return buf.Bytes()
}

func TestSplit(t *testing.T) {
	b := encodeJPEG(t)
	f, err := Split(b)
	require.NoError(t, err)
	assert.NotEmpty(t, f.Segments)
	assert.Equal(t, []byte{0xFF, markerSOS}, f.Scan[:2])
	assert.Equal(t, b, f.Bytes())

	_, ok := f.Exif()
	assert.False(t, ok)
}

func TestSetExif(t *testing.T) {
	f, err := Split(encodeJPEG(t))
	require.NoError(t, err)

	require.NoError(t, f.SetExif([]byte("first")))
	require.NoError(t, f.SetExif([]byte("second")))
	assert.Equal(t, byte(markerAPP1), f.Segments[0].Marker)

	again, err := Split(f.Bytes())
	require.NoError(t, err)
	tiff, ok := again.Exif()
	require.True(t, ok)
	assert.Equal(t, []byte("second"), tiff)

	n := 0
	for _, s := range again.Segments {
		if s.Marker == markerAPP1 {
			n++
		}
	}
	assert.Equal(t, 1, n)

	_, err = jpeg.Decode(bytes.NewReader(again.Bytes()))
	assert.NoError(t, err)

	assert.Error(t, f.SetExif(make([]byte, MaxSegmentData)))
}

func TestSetExifAfterJFIF(t *testing.T) {
	f := &File{
		Segments: []Segment{{Marker: markerAPP0, Data: []byte("JFIF\x00")}, {Marker: 0xDB, Data: []byte{0}}},
		Scan:     []byte{0xFF, markerSOS},
	}
	require.NoError(t, f.SetExif([]byte("x")))
	assert.Equal(t, byte(markerAPP0), f.Segments[0].Marker)
	assert.Equal(t, byte(markerAPP1), f.Segments[1].Marker)
	assert.Equal(t, byte(0xDB), f.Segments[2].Marker)
}

func TestSplitMalformed(t *testing.T) {
	test := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "png", data: []byte("\x89PNG\r\n\x1a\n")},
		{name: "truncated length", data: []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00}},
		{name: "overrun", data: []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x10, 0x00, 0x00}},
		{name: "no scan", data: []byte{0xFF, 0xD8, 0xFF, 0xD9}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.data)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}
