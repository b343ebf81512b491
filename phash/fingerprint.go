package phash

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/yyyoichi/stego_zero/internal/bitconv"
)

type Algorithm string

const (
	AlgoPHash Algorithm = "phash"
	AlgoDHash Algorithm = "dhash"
	AlgoAHash Algorithm = "ahash"
	AlgoWHash Algorithm = "whash"
)

// Fingerprint is a perceptual hash. Hash packs Bits bits, most significant
// bit first.
type Fingerprint struct {
	Algorithm Algorithm
	Bits      int
	Hash      []byte
}

func newFingerprint(algo Algorithm, bits []bool) Fingerprint {
	return Fingerprint{Algorithm: algo, Bits: len(bits), Hash: bitconv.BoolsToBytes(bits)}
}

// ParseFingerprint parses the lowercase hex form returned by String.
func ParseFingerprint(algo Algorithm, s string) (Fingerprint, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("invalid %s fingerprint %q: %w", algo, s, err)
	}
	return Fingerprint{Algorithm: algo, Bits: len(b) * 8, Hash: b}, nil
}

// String returns the hash as lowercase hex, 16 characters for 64 bits.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f.Hash)
}

// IsZero reports whether f holds no hash.
func (f Fingerprint) IsZero() bool {
	return f.Bits == 0
}

// Bit returns bit i.
func (f Fingerprint) Bit(i int) bool {
	return f.Hash[i/8]>>(7-uint(i%8))&1 == 1
}

type fingerprintJSON struct {
	Algorithm Algorithm `json:"algorithm"`
	Hash      string    `json:"hash"`
}

func (f Fingerprint) MarshalJSON() ([]byte, error) {
	return json.Marshal(fingerprintJSON{Algorithm: f.Algorithm, Hash: f.String()})
}

func (f *Fingerprint) UnmarshalJSON(b []byte) error {
	var v fingerprintJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := ParseFingerprint(v.Algorithm, v.Hash)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Set groups the fingerprints of one image.
type Set struct {
	PHash Fingerprint `json:"phash"`
	DHash Fingerprint `json:"dhash"`
	AHash Fingerprint `json:"ahash"`
	WHash Fingerprint `json:"whash"`
}

// Get returns the fingerprint for algo, or a zero Fingerprint.
func (s Set) Get(algo Algorithm) Fingerprint {
	switch algo {
	case AlgoPHash:
		return s.PHash
	case AlgoDHash:
		return s.DHash
	case AlgoAHash:
		return s.AHash
	case AlgoWHash:
		return s.WHash
	}
	return Fingerprint{}
}

// Algorithms lists every algorithm in the order Set stores them.
func Algorithms() []Algorithm {
	return []Algorithm{AlgoPHash, AlgoDHash, AlgoAHash, AlgoWHash}
}
