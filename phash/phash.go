// Package phash computes perceptual fingerprints of images: hashes that stay
// close under resizing, recompression and small edits, unlike the exact
// content signature.
//
// All hashes are 64 bits and work on ITU-R 601-2 luminance. An image that is
// a single color up to a few levels of noise has no structure to threshold,
// so every algorithm returns the same flat fingerprint for it: a 21-level
// thermometer code of the mean R, G and B followed by a set bit. The Hamming
// distance between two flat fingerprints grows with the color difference.
package phash

import (
	"image"
	"math"
	"slices"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/internal/dct"
	"github.com/yyyoichi/stego_zero/internal/dwt"
	"github.com/yyyoichi/stego_zero/internal/luma"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"
)

const (
	hashSize = 8
	hashBits = hashSize * hashSize

	phashScale = 4 * hashSize
	whashScale = 64

	flatLevels = 21
	// flatSpread is the largest per-channel spread, in 8-bit levels, of the
	// 32×32 thumbnail of an image that counts as a single color.
	flatSpread = 4
)

var dctCache = dct.NewCache()

// PHash resizes to 32×32, takes the top-left 8×8 DCT coefficients and sets a
// bit for each coefficient above their median.
func PHash(img *stego.ImageBuffer) (Fingerprint, error) {
	if err := img.Validate(); err != nil {
		return Fingerprint{}, err
	}
	if isFlat(img) {
		return flat(AlgoPHash, img), nil
	}
	gray := grayGrid(img, phashScale, phashScale)
	coef := dctCache.New(phashScale, phashScale).Exec(gray)
	low := make([]float64, hashBits)
	for y := range hashSize {
		copy(low[y*hashSize:(y+1)*hashSize], coef[y*phashScale:y*phashScale+hashSize])
	}
	return threshold(AlgoPHash, low, median(low)), nil
}

// DHash resizes to 9×8 and sets a bit where a pixel is darker than its right
// neighbour.
func DHash(img *stego.ImageBuffer) (Fingerprint, error) {
	if err := img.Validate(); err != nil {
		return Fingerprint{}, err
	}
	if isFlat(img) {
		return flat(AlgoDHash, img), nil
	}
	w := hashSize + 1
	gray := grayGrid(img, w, hashSize)
	bits := make([]bool, hashBits)
	for y := range hashSize {
		for x := range hashSize {
			bits[y*hashSize+x] = gray[y*w+x] < gray[y*w+x+1]
		}
	}
	return newFingerprint(AlgoDHash, bits), nil
}

// AHash resizes to 8×8 and sets a bit for each pixel above the mean.
func AHash(img *stego.ImageBuffer) (Fingerprint, error) {
	if err := img.Validate(); err != nil {
		return Fingerprint{}, err
	}
	if isFlat(img) {
		return flat(AlgoAHash, img), nil
	}
	gray := grayGrid(img, hashSize, hashSize)
	return threshold(AlgoAHash, gray, stat.Mean(gray, nil)), nil
}

// WHash resizes to 64×64, removes the coarsest Haar approximation, then
// decomposes three levels and thresholds the 8×8 approximation band against
// its median.
func WHash(img *stego.ImageBuffer) (Fingerprint, error) {
	if err := img.Validate(); err != nil {
		return Fingerprint{}, err
	}
	if isFlat(img) {
		return flat(AlgoWHash, img), nil
	}
	gray := grayGrid(img, whashScale, whashScale)
	plane := make([]float32, len(gray))
	for i, v := range gray {
		plane[i] = float32(v / 255)
	}

	maxLevel := int(math.Log2(whashScale))
	cA, _, levels := dwt.Decompose(plane, whashScale, maxLevel)
	plane = dwt.Reconstruct(make([]float32, len(cA)), levels)

	level := maxLevel - int(math.Log2(hashSize))
	cA, _, _ = dwt.Decompose(plane, whashScale, level)
	low := make([]float64, len(cA))
	for i, v := range cA {
		low[i] = float64(v)
	}
	return threshold(AlgoWHash, low, median(low)), nil
}

// Hashes computes every fingerprint of img.
func Hashes(img *stego.ImageBuffer) (Set, error) {
	var (
		s   Set
		err error
	)
	if s.PHash, err = PHash(img); err != nil {
		return Set{}, err
	}
	if s.DHash, err = DHash(img); err != nil {
		return Set{}, err
	}
	if s.AHash, err = AHash(img); err != nil {
		return Set{}, err
	}
	if s.WHash, err = WHash(img); err != nil {
		return Set{}, err
	}
	return s, nil
}

// grayGrid resizes img to w×h with Catmull-Rom and returns its luminance.
func grayGrid(img *stego.ImageBuffer, w, h int) []float64 {
	return luma.Plane(thumbnail(img, w, h).Pix, 4)
}

func thumbnail(img *stego.ImageBuffer, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	src := img.Image()
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// isFlat reports whether every channel of the 32×32 thumbnail of img stays
// within flatSpread levels.
func isFlat(img *stego.ImageBuffer) bool {
	thumb := thumbnail(img, phashScale, phashScale)
	for c := range stego.Channels {
		lo, hi := uint8(255), uint8(0)
		for i := c; i < len(thumb.Pix); i += 4 {
			lo, hi = min(lo, thumb.Pix[i]), max(hi, thumb.Pix[i])
		}
		if int(hi)-int(lo) > flatSpread {
			return false
		}
	}
	return true
}

func threshold(algo Algorithm, values []float64, t float64) Fingerprint {
	bits := make([]bool, len(values))
	for i, v := range values {
		bits[i] = v > t
	}
	return newFingerprint(algo, bits)
}

func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

func flat(algo Algorithm, img *stego.ImageBuffer) Fingerprint {
	r, g, b := img.MeanColor()
	bits := make([]bool, hashBits)
	for c, v := range []float64{r, g, b} {
		level := int(math.Round(v * flatLevels / 255))
		for i := range level {
			bits[c*flatLevels+i] = true
		}
	}
	bits[hashBits-1] = true
	return newFingerprint(algo, bits)
}
