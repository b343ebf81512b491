package dct

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDCT(t *testing.T) {
	test := []struct {
		name string
		w, h int
	}{
		{name: "8x8", w: 8, h: 8},
		{name: "32x32", w: 32, h: 32},
		{name: "4x6", w: 4, h: 6},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]float64, tt.w*tt.h)
			for i := range data {
				data[i] = float64((i*37)%255) - 100
			}
			d := New(tt.w, tt.h)
			coef := d.Exec(data)
			assert.Len(t, coef, len(data))
			assert.InDeltaSlice(t, direct(data, tt.w, tt.h), coef, 1e-6)

			// Parseval: an orthonormal transform keeps the energy.
			var e1, e2 float64
			for i := range data {
				e1 += data[i] * data[i]
				e2 += coef[i] * coef[i]
			}
			assert.InDelta(t, e1, e2, 1e-6*e1)
		})
	}
}

func TestDCTConstant(t *testing.T) {
	d := New(8, 8)
	data := make([]float64, 64)
	for i := range data {
		data[i] = 10
	}
	coef := d.Exec(data)
	assert.InDelta(t, 80, coef[0], 1e-9)
	for i := 1; i < len(coef); i++ {
		assert.Less(t, math.Abs(coef[i]), 1e-9)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	a := c.New(8, 8)
	assert.Same(t, a, c.New(8, 8))
	assert.NotSame(t, a, c.New(8, 4))
}

// direct evaluates the orthonormal 2-D DCT-II sum for every coefficient.
func direct(data []float64, w, h int) []float64 {
	alpha := func(k, n int) float64 {
		if k == 0 {
			return math.Sqrt(1 / float64(n))
		}
		return math.Sqrt(2 / float64(n))
	}
	out := make([]float64, w*h)
	for v := range h {
		for u := range w {
			var sum float64
			for y := range h {
				for x := range w {
					sum += data[y*w+x] *
						math.Cos(math.Pi*float64(2*x+1)*float64(u)/float64(2*w)) *
						math.Cos(math.Pi*float64(2*y+1)*float64(v)/float64(2*h))
				}
			}
			out[v*w+u] = alpha(u, w) * alpha(v, h) * sum
		}
	}
	return out
}
