package phash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/internal/luma"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	contextPrefix = "CV:"
	contextBins   = 50
	contextHexLen = 32
)

// ContextSignature summarizes the visual features of img: the first 50 bins
// of its 8-bit luminance histogram, the seven Hu moments, the mean and the
// standard deviation. It returns "CV:" followed by the first 32 hex digits of
// the SHA-256 of those features as little-endian float64.
//
// Unlike the perceptual hashes any change in the features changes the whole
// signature.
func ContextSignature(img *stego.ImageBuffer) (string, error) {
	if err := img.Validate(); err != nil {
		return "", err
	}
	gray := luma.Plane8(img.Pix, img.Channels)
	samples := make([]float64, len(gray))
	hist := make([]float64, 256)
	for i, v := range gray {
		samples[i] = float64(v)
		hist[v]++
	}

	features := make([]float64, 0, contextBins+7+2)
	features = append(features, hist[:contextBins]...)
	hu := huMoments(samples, img.Width)
	features = append(features, hu[:]...)
	mean, std := stat.PopMeanStdDev(samples, nil)
	features = append(features, mean, std)

	buf := make([]byte, 0, 8*len(features))
	for _, f := range features {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
	}
	sum := sha256.Sum256(buf)
	return contextPrefix + hex.EncodeToString(sum[:])[:contextHexLen], nil
}

// huMoments returns the seven Hu invariant moments of a w-wide intensity
// plane. A plane without mass has all moments zero.
func huMoments(plane []float64, w int) [7]float64 {
	var hu [7]float64
	m00 := floats.Sum(plane)
	if m00 == 0 {
		return hu
	}
	var m10, m01 float64
	for i, v := range plane {
		m10 += float64(i%w) * v
		m01 += float64(i/w) * v
	}
	cx, cy := m10/m00, m01/m00

	var mu20, mu02, mu11, mu30, mu03, mu21, mu12 float64
	for i, v := range plane {
		dx, dy := float64(i%w)-cx, float64(i/w)-cy
		mu20 += dx * dx * v
		mu02 += dy * dy * v
		mu11 += dx * dy * v
		mu30 += dx * dx * dx * v
		mu03 += dy * dy * dy * v
		mu21 += dx * dx * dy * v
		mu12 += dx * dy * dy * v
	}
	norm := func(mu float64, order int) float64 {
		return mu / math.Pow(m00, 1+float64(order)/2)
	}
	n20, n02, n11 := norm(mu20, 2), norm(mu02, 2), norm(mu11, 2)
	n30, n03, n21, n12 := norm(mu30, 3), norm(mu03, 3), norm(mu21, 3), norm(mu12, 3)

	a, b := n30+n12, n21+n03
	hu[0] = n20 + n02
	hu[1] = (n20-n02)*(n20-n02) + 4*n11*n11
	hu[2] = (n30-3*n12)*(n30-3*n12) + (3*n21-n03)*(3*n21-n03)
	hu[3] = a*a + b*b
	hu[4] = (n30-3*n12)*a*(a*a-3*b*b) + (3*n21-n03)*b*(3*a*a-b*b)
	hu[5] = (n20-n02)*(a*a-b*b) + 4*n11*a*b
	hu[6] = (3*n21-n03)*a*(a*a-3*b*b) - (n30-3*n12)*b*(3*a*a-b*b)
	return hu
}
