package dwt

import (
	"math"
)

// HaarDWT runs one level of the 2-D Haar transform over w-wide row-major
// data and returns the cA, cH, cV and cD bands, each ceil(w/2)×ceil(h/2).
// Odd edges repeat the last row or column.
func HaarDWT(data []float32, w int) [][]float32 {
	h := len(data) / w

	hw, hh := (w+1)/2, (h+1)/2
	l := hw * hh
	cA := make([]float32, l)
	cH := make([]float32, l)
	cV := make([]float32, l)
	cD := make([]float32, l)

	for y0 := 0; y0 < h; y0 += 2 {
		y1 := min(y0+1, h-1)
		for x0 := 0; x0 < w; x0 += 2 {
			x1 := min(x0+1, w-1)
			a1, d1 := cacd(data[y0*w+x0], data[y1*w+x0])
			a2, d2 := cacd(data[y0*w+x1], data[y1*w+x1])

			idx := (y0/2)*hw + (x0 / 2)
			cA[idx], cV[idx] = cacd(a1, a2)
			cH[idx], cD[idx] = cacd(d1, d2)
		}
	}

	return [][]float32{cA, cH, cV, cD}
}

// HaarIDWT rebuilds w×h data from the bands of HaarDWT.
func HaarIDWT(bands [][]float32, w, h int) []float32 {
	data := make([]float32, w*h)
	var (
		cA = bands[0]
		cH = bands[1]
		cV = bands[2]
		cD = bands[3]
	)
	hw := (w + 1) / 2
	for y0 := 0; y0 < h; y0 += 2 {
		for x0 := 0; x0 < w; x0 += 2 {
			idx := (y0/2)*hw + (x0 / 2)

			a1, a2 := icacd(cA[idx], cV[idx])
			d1, d2 := icacd(cH[idx], cD[idx])

			v1, v2 := icacd(a1, d1)
			v3, v4 := icacd(a2, d2)

			data[y0*w+x0] = v1
			if y0+1 < h {
				data[(y0+1)*w+x0] = v2
			}
			if x0+1 < w {
				data[y0*w+(x0+1)] = v3
			}
			if y0+1 < h && x0+1 < w {
				data[(y0+1)*w+(x0+1)] = v4
			}
		}
	}
	return data
}

func cacd(v1, v2 float32) (float32, float32) {
	avr := (v1 + v2) / 2.0
	return avr * math.Sqrt2, (v1 - avr) * math.Sqrt2
}

func icacd(a, d float32) (float32, float32) {
	avr := a / math.Sqrt2
	return avr + d/math.Sqrt2, avr - d/math.Sqrt2
}

// Level is one step of a multi-level decomposition: the detail bands and the
// size of the data they were computed from.
type Level struct {
	W, H    int
	Details [][]float32 // cH, cV, cD
}

// Decompose applies HaarDWT n times to the approximation band and returns
// the final approximation with its width, and the levels from finest to
// coarsest.
func Decompose(data []float32, w, n int) ([]float32, int, []Level) {
	levels := make([]Level, 0, n)
	for range n {
		h := len(data) / w
		bands := HaarDWT(data, w)
		levels = append(levels, Level{W: w, H: h, Details: bands[1:]})
		data, w = bands[0], (w+1)/2
	}
	return data, w, levels
}

// Reconstruct reverses Decompose starting from the approximation cA.
func Reconstruct(cA []float32, levels []Level) []float32 {
	for i := len(levels) - 1; i >= 0; i-- {
		l := levels[i]
		cA = HaarIDWT([][]float32{cA, l.Details[0], l.Details[1], l.Details[2]}, l.W, l.H)
	}
	return cA
}
