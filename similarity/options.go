package similarity

import (
	"errors"

	"github.com/yyyoichi/stego_zero/phash"
)

type Option func(*Scorer) error

// WithIdenticalThreshold sets the average score, in percent, above which two
// images are reported identical.
func WithIdenticalThreshold(p float64) Option {
	return func(s *Scorer) error {
		if err := checkPercent(p); err != nil {
			return err
		}
		s.identical = p
		return nil
	}
}

// WithSimilarThreshold sets the average score, in percent, from which two
// images are reported similar.
func WithSimilarThreshold(p float64) Option {
	return func(s *Scorer) error {
		if err := checkPercent(p); err != nil {
			return err
		}
		s.similar = p
		return nil
	}
}

type IndexOption func(*Index) error

// WithAlgorithms selects the fingerprints averaged by FindSimilar.
// The default is pHash, dHash and aHash.
func WithAlgorithms(algos ...phash.Algorithm) IndexOption {
	return func(ix *Index) error {
		if len(algos) == 0 {
			return errors.New("at least one algorithm is required")
		}
		ix.algos = algos
		return nil
	}
}

func checkPercent(p float64) error {
	if p < 0 || p > 100 {
		return errors.New("threshold must be within 0 and 100")
	}
	return nil
}
