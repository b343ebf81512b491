package dwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaar(t *testing.T) {
	test := []struct {
		name string
		w, h int
	}{
		{name: "8x8", w: 8, h: 8},
		{name: "64x64", w: 64, h: 64},
		{name: "6x4", w: 6, h: 4},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]float32, tt.w*tt.h)
			for i := range data {
				data[i] = float32((i * 31) % 256)
			}
			bands := HaarDWT(data, tt.w)
			assert.Len(t, bands, 4)
			assert.Len(t, bands[0], (tt.w/2)*(tt.h/2))
			assert.InDeltaSlice(t, toF64(data), toF64(HaarIDWT(bands, tt.w, tt.h)), 1e-3)
		})
	}
}

func TestHaarConstant(t *testing.T) {
	data := []float32{4, 4, 4, 4}
	bands := HaarDWT(data, 2)
	assert.InDelta(t, 8, bands[0][0], 1e-5)
	for _, b := range bands[1:] {
		assert.InDelta(t, 0, b[0], 1e-6)
	}
}

func TestDecompose(t *testing.T) {
	data := make([]float32, 64*64)
	for i := range data {
		data[i] = float32(i%64) / 64
	}
	cA, w, levels := Decompose(data, 64, 3)
	assert.Equal(t, 8, w)
	assert.Len(t, cA, 64)
	assert.Len(t, levels, 3)
	assert.Equal(t, 64, levels[0].W)
	assert.Equal(t, 16, levels[2].H)

	assert.InDeltaSlice(t, toF64(data), toF64(Reconstruct(cA, levels)), 1e-4)
}

func toF64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = float64(v[i])
	}
	return out
}
