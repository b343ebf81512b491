package phash

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	stego "github.com/yyyoichi/stego_zero"
	"golang.org/x/crypto/blake2b"
)

// Digest selects the hash function of ContentSignature.
type Digest int

const (
	// DigestMD5 matches signatures produced by earlier versions of this
	// workflow. It is not collision resistant.
	DigestMD5 Digest = iota
	// DigestBLAKE2b is BLAKE2b-256.
	DigestBLAKE2b
)

func (d Digest) String() string {
	switch d {
	case DigestMD5:
		return "md5"
	case DigestBLAKE2b:
		return "blake2b"
	}
	return fmt.Sprintf("Digest(%d)", int(d))
}

// ParseDigest accepts the names returned by String.
func ParseDigest(s string) (Digest, error) {
	switch strings.ToLower(s) {
	case "", "md5":
		return DigestMD5, nil
	case "blake2b", "blake2b-256":
		return DigestBLAKE2b, nil
	}
	return 0, fmt.Errorf("unknown digest %q", s)
}

type options struct {
	digest Digest
}

type Option func(*options) error

// WithDigest selects the content signature hash. The default is DigestMD5.
func WithDigest(d Digest) Option {
	return func(o *options) error {
		if d != DigestMD5 && d != DigestBLAKE2b {
			return fmt.Errorf("unknown digest %v", d)
		}
		o.digest = d
		return nil
	}
}

// ContentSignature returns the lowercase hex digest of the raw RGB samples.
// Any change to any sample changes it.
func ContentSignature(img *stego.ImageBuffer, opts ...Option) (string, error) {
	var o options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return "", err
		}
	}
	if err := img.Validate(); err != nil {
		return "", err
	}
	switch o.digest {
	case DigestBLAKE2b:
		sum := blake2b.Sum256(img.Pix)
		return hex.EncodeToString(sum[:]), nil
	default:
		sum := md5.Sum(img.Pix)
		return hex.EncodeToString(sum[:]), nil
	}
}
