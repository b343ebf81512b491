// Package signature signs JPEG files with a hash of their pixels stored in
// the EXIF UserComment, and detects later modification of those pixels.
package signature

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/exifmeta"
	"github.com/yyyoichi/stego_zero/imgio"
	"github.com/yyyoichi/stego_zero/phash"
)

//go:embed signature.schema.json
var schemaJSON []byte

const schemaURL = "signature.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

const (
	ReasonNoSignature = "no signature found"
	ReasonMatch       = "content hash matches"
	ReasonMismatch    = "content hash differs"
)

// Signature is the record stored in a signed image.
type Signature struct {
	ContentHash string
	Timestamp   int64
	Width       int
	Height      int
	Format      string
}

type signatureJSON struct {
	ContentHash string      `json:"content_hash"`
	Timestamp   json.Number `json:"timestamp"`
	Dimensions  [2]int      `json:"dimensions"`
	Format      string      `json:"format"`
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(signatureJSON{
		ContentHash: s.ContentHash,
		Timestamp:   json.Number(fmt.Sprint(s.Timestamp)),
		Dimensions:  [2]int{s.Width, s.Height},
		Format:      s.Format,
	})
}

// UnmarshalJSON accepts fractional timestamps and truncates them to seconds.
func (s *Signature) UnmarshalJSON(b []byte) error {
	var v signatureJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	ts, err := v.Timestamp.Float64()
	if err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	*s = Signature{
		ContentHash: v.ContentHash,
		Timestamp:   int64(ts),
		Width:       v.Dimensions[0],
		Height:      v.Dimensions[1],
		Format:      v.Format,
	}
	return nil
}

// Time returns Timestamp as a time.Time.
func (s Signature) Time() time.Time {
	return time.Unix(s.Timestamp, 0)
}

// Verification is the outcome of Verify.
type Verification struct {
	Verified             bool       `json:"verified"`
	ModificationDetected bool       `json:"modification_detected"`
	Reason               string     `json:"reason"`
	Original             *Signature `json:"original_signature,omitempty"`
	CurrentHash          string     `json:"current_hash,omitempty"`
}

type Signer struct {
	embedder *exifmeta.Embedder
	digest   phash.Digest
	now      func() time.Time
	logger   hclog.Logger
}

// New initializes a Signer. By default it hashes with MD5, reads the system
// clock and logs nothing.
func New(opts ...Option) (*Signer, error) {
	s := &Signer{
		digest: phash.DigestMD5,
		now:    time.Now,
		logger: hclog.NewNullLogger(),
	}
	var embedOpts []exifmeta.Option
	for _, opt := range opts {
		if err := opt(s, &embedOpts); err != nil {
			return nil, err
		}
	}
	e, err := exifmeta.New(embedOpts...)
	if err != nil {
		return nil, err
	}
	s.embedder = e
	return s, nil
}

// Sign re-encodes the JPEG, hashes the pixels of the re-encoded image and
// stores the signature in its UserComment. Only metadata is written after
// hashing, so the returned file verifies.
func (s *Signer) Sign(jpegBytes []byte) ([]byte, Signature, error) {
	reencoded, err := s.embedder.Reencode(jpegBytes)
	if err != nil {
		return nil, Signature{}, err
	}
	img, _, err := imgio.DecodeBytes(reencoded)
	if err != nil {
		return nil, Signature{}, fmt.Errorf("%w: %w", stego.ErrInvalidContainer, err)
	}
	hash, err := phash.ContentSignature(img, phash.WithDigest(s.digest))
	if err != nil {
		return nil, Signature{}, err
	}
	sig := Signature{
		ContentHash: hash,
		Timestamp:   s.now().Unix(),
		Width:       img.Width,
		Height:      img.Height,
		Format:      "JPEG",
	}
	payload, err := json.Marshal(sig)
	if err != nil {
		return nil, Signature{}, err
	}
	signed, err := s.embedder.SetComment(reencoded, payload)
	if err != nil {
		return nil, Signature{}, err
	}
	s.logger.Debug("signed image", "hash", hash, "digest", s.digest, "width", img.Width, "height", img.Height)
	return signed, sig, nil
}

// Verify compares the stored signature with the current pixels.
// An image without a signature is reported unverified with no error. A
// comment that is not a valid signature is ErrCorruptPayload.
func (s *Signer) Verify(jpegBytes []byte) (Verification, error) {
	payload, ok, err := s.embedder.Extract(jpegBytes)
	if err != nil {
		return Verification{}, err
	}
	if !ok {
		s.logger.Trace("no signature", "size", len(jpegBytes))
		return Verification{Reason: ReasonNoSignature}, nil
	}
	sig, err := parse(payload)
	if err != nil {
		return Verification{}, err
	}

	img, _, err := imgio.DecodeBytes(jpegBytes)
	if err != nil {
		return Verification{}, fmt.Errorf("%w: %w", stego.ErrInvalidContainer, err)
	}
	digest := phash.DigestMD5
	if len(sig.ContentHash) == 64 {
		digest = phash.DigestBLAKE2b
	}
	current, err := phash.ContentSignature(img, phash.WithDigest(digest))
	if err != nil {
		return Verification{}, err
	}

	v := Verification{
		Verified:    current == sig.ContentHash,
		Original:    &sig,
		CurrentHash: current,
		Reason:      ReasonMatch,
	}
	if !v.Verified {
		v.ModificationDetected = true
		v.Reason = ReasonMismatch
	}
	s.logger.Debug("verified image", "verified", v.Verified, "signed_at", sig.Time())
	return v, nil
}

func parse(payload []byte) (Signature, error) {
	schema, err := compileSchema()
	if err != nil {
		return Signature{}, err
	}
	var instance any
	if err := json.Unmarshal(payload, &instance); err != nil {
		return Signature{}, fmt.Errorf("%w: %w", stego.ErrCorruptPayload, err)
	}
	if err := schema.Validate(instance); err != nil {
		return Signature{}, fmt.Errorf("%w: %w", stego.ErrCorruptPayload, err)
	}
	var sig Signature
	if err := json.Unmarshal(payload, &sig); err != nil {
		return Signature{}, fmt.Errorf("%w: %w", stego.ErrCorruptPayload, err)
	}
	return sig, nil
}
