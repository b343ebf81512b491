// Package similarity scores perceptual fingerprints against each other.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/phash"
)

const (
	DefaultIdenticalThreshold = 95.0
	DefaultSimilarThreshold   = 85.0
)

// Hamming counts the differing bits of a and b.
// Fingerprints of different algorithms or lengths are not comparable.
func Hamming(a, b phash.Fingerprint) (int, error) {
	if a.Algorithm != b.Algorithm {
		return 0, fmt.Errorf("%w: %s vs %s", stego.ErrFingerprintLengthMismatch, a.Algorithm, b.Algorithm)
	}
	if a.Bits != b.Bits || len(a.Hash) != len(b.Hash) {
		return 0, fmt.Errorf("%w: %d vs %d bits", stego.ErrFingerprintLengthMismatch, a.Bits, b.Bits)
	}
	d := 0
	for i := range a.Hash {
		d += bits.OnesCount8(a.Hash[i] ^ b.Hash[i])
	}
	return d, nil
}

// Score returns the similarity of a and b in percent, 100*(1-hamming/bits).
func Score(a, b phash.Fingerprint) (float64, error) {
	d, err := Hamming(a, b)
	if err != nil {
		return 0, err
	}
	if a.Bits == 0 {
		return 0, fmt.Errorf("%w: empty fingerprint", stego.ErrFingerprintLengthMismatch)
	}
	return 100 * (1 - float64(d)/float64(a.Bits)), nil
}

// Result reports scores in percent rounded to two decimals. Identical and
// Similar are decided on the unrounded average.
type Result struct {
	PHash     float64 `json:"phash_score"`
	DHash     float64 `json:"dhash_score"`
	Average   float64 `json:"average_score"`
	Identical bool    `json:"identical"`
	Similar   bool    `json:"similar"`
}

// Compare scores a against b with the default thresholds.
// This is a convenience function that creates a Scorer and calls its Compare method.
func Compare(a, b phash.Set) (Result, error) {
	s, _ := New()
	return s.Compare(a, b)
}

type Scorer struct {
	identical, similar float64
}

// New initializes a Scorer. Images are identical above 95% and similar from
// 85% unless options say otherwise.
func New(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		identical: DefaultIdenticalThreshold,
		similar:   DefaultSimilarThreshold,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.similar > s.identical {
		return nil, errors.New("similar threshold must not exceed identical threshold")
	}
	return s, nil
}

// Compare scores the pHash and dHash of a and b. The average is the mean of
// the scores available on both sides.
func (s *Scorer) Compare(a, b phash.Set) (Result, error) {
	var (
		res   Result
		sum   float64
		count int
	)
	for _, algo := range []phash.Algorithm{phash.AlgoPHash, phash.AlgoDHash} {
		fa, fb := a.Get(algo), b.Get(algo)
		if fa.IsZero() || fb.IsZero() {
			continue
		}
		score, err := Score(fa, fb)
		if err != nil {
			return Result{}, err
		}
		switch algo {
		case phash.AlgoPHash:
			res.PHash = round2(score)
		case phash.AlgoDHash:
			res.DHash = round2(score)
		}
		sum += score
		count++
	}
	if count == 0 {
		return Result{}, fmt.Errorf("%w: no pHash or dHash on both sides", stego.ErrFingerprintLengthMismatch)
	}
	avg := sum / float64(count)
	res.Average = round2(avg)
	res.Identical = avg > s.identical
	res.Similar = avg >= s.similar
	return res, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
