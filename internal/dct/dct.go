package dct

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DCT is an orthonormal 2-D DCT-II over w×h row-major data, computed
// separably as C = Φh · X · Φwᵀ.
type DCT struct {
	w, h       int
	phiW, phiH *mat.Dense
}

func New(w, h int) *DCT {
	return &DCT{w: w, h: h, phiW: basis(w), phiH: basis(h)}
}

// basis returns the n×n orthonormal DCT-II matrix; row i is frequency i.
func basis(n int) *mat.Dense {
	nf := float64(n)
	phi := mat.NewDense(n, n, nil)
	for j := range n {
		// i = 0
		phi.Set(0, j, 1.0/math.Sqrt(nf))
	}
	for i := 1; i < n; i++ {
		for j := range n {
			phi.Set(i, j, math.Sqrt(2.0/nf)*
				math.Cos(
					(float64(i)*math.Pi*(float64(j)*2+1))/
						(2.0*nf),
				),
			)
		}
	}
	return phi
}

// Exec returns the DCT coefficients of data, row-major, h rows of w.
func (dct *DCT) Exec(data []float64) []float64 {
	x := mat.NewDense(dct.h, dct.w, data)
	var tmp, c mat.Dense
	tmp.Mul(dct.phiH, x)
	c.Mul(&tmp, dct.phiW.T())
	return flatten(&c, dct.w, dct.h)
}

func flatten(m *mat.Dense, w, h int) []float64 {
	out := make([]float64, w*h)
	for i := range h {
		mat.Row(out[i*w:(i+1)*w], i, m)
	}
	return out
}
