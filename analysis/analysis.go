// Package analysis computes luminance statistics that hint at LSB
// steganography. The scoring is a heuristic and produces false positives on
// flat or synthetic images.
package analysis

import (
	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/internal/luma"
	"gonum.org/v1/gonum/stat"
)

const (
	lsbRatioMin   = 0.45
	lsbRatioMax   = 0.55
	lowStdDev     = 30
	edgeThreshold = 150
	edgeDensityLo = 0.05
	edgeDensityHi = 0.3
	likelyScore   = 0.5
)

type Report struct {
	Mean   float64 `json:"mean_pixel"`
	StdDev float64 `json:"std_pixel"`
	// LSBRatio is the fraction of luminance samples whose low bit is set.
	LSBRatio float64 `json:"lsb_ratio"`
	// LSBChiSquare compares the even and odd sample counts with an even split.
	LSBChiSquare float64 `json:"lsb_chi_square"`
	EdgeDensity  float64 `json:"edge_density"`

	SuspicionScore      float64 `json:"suspicion_score"`
	LikelySteganography bool    `json:"likely_steganography"`
	Confidence          float64 `json:"confidence"`
}

// Structure analyzes the 8-bit luminance plane of img.
func Structure(img *stego.ImageBuffer) (Report, error) {
	if err := img.Validate(); err != nil {
		return Report{}, err
	}
	gray := luma.Plane8(img.Pix, img.Channels)
	samples := make([]float64, len(gray))
	var odd int
	for i, v := range gray {
		samples[i] = float64(v)
		odd += int(v & 1)
	}
	n := float64(len(gray))

	var r Report
	r.Mean, r.StdDev = stat.PopMeanStdDev(samples, nil)
	r.LSBRatio = float64(odd) / n
	r.LSBChiSquare = stat.ChiSquare(
		[]float64{n - float64(odd), float64(odd)},
		[]float64{n / 2, n / 2},
	)
	r.EdgeDensity = edgeDensity(gray, img.Width, img.Height)

	if r.LSBRatio >= lsbRatioMin && r.LSBRatio <= lsbRatioMax {
		r.SuspicionScore += 0.3
	}
	if r.StdDev < lowStdDev {
		r.SuspicionScore += 0.2
	}
	if r.EdgeDensity < edgeDensityLo || r.EdgeDensity > edgeDensityHi {
		r.SuspicionScore += 0.2
	}
	r.LikelySteganography = r.SuspicionScore > likelyScore
	r.Confidence = min(r.SuspicionScore*2, 1)
	return r, nil
}

// edgeDensity returns the fraction of pixels whose Sobel gradient magnitude
// (L1 norm) reaches edgeThreshold. Border pixels are never edges.
func edgeDensity(gray []uint8, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	at := func(x, y int) int { return int(gray[y*w+x]) }
	var edges int
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			if abs(gx)+abs(gy) >= edgeThreshold {
				edges++
			}
		}
	}
	return float64(edges) / float64(w*h)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
