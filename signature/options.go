package signature

import (
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/yyyoichi/stego_zero/exifmeta"
	"github.com/yyyoichi/stego_zero/phash"
)

type Option func(*Signer, *[]exifmeta.Option) error

// WithClock replaces the clock used for signature timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Signer, _ *[]exifmeta.Option) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}
		s.now = now
		return nil
	}
}

// WithDigest selects the content hash of new signatures. Verify detects the
// digest from the stored hash.
func WithDigest(d phash.Digest) Option {
	return func(s *Signer, _ *[]exifmeta.Option) error {
		if d != phash.DigestMD5 && d != phash.DigestBLAKE2b {
			return errors.New("unknown digest")
		}
		s.digest = d
		return nil
	}
}

// WithLogger sets the logger for signing and verification events.
func WithLogger(l hclog.Logger) Option {
	return func(s *Signer, _ *[]exifmeta.Option) error {
		if l == nil {
			return errors.New("logger must not be nil")
		}
		s.logger = l
		return nil
	}
}

// WithEmbedOptions passes options to the underlying EXIF embedder.
func WithEmbedOptions(opts ...exifmeta.Option) Option {
	return func(_ *Signer, embed *[]exifmeta.Option) error {
		*embed = append(*embed, opts...)
		return nil
	}
}
