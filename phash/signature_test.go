package phash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stego "github.com/yyyoichi/stego_zero"
)

func TestContentSignature(t *testing.T) {
	test := []struct {
		name string
		img  *stego.ImageBuffer
		opts []Option
		exp  string
	}{
		{name: "md5 black", img: stego.NewImageBuffer(10, 10), exp: "4aa09c46db228e7f610ad440cd89c103"},
		{name: "md5 red", img: solid(2, 2, 255, 0, 0), exp: "071810197ff89c980de6aa678505eb54"},
		{
			name: "blake2b black",
			img:  stego.NewImageBuffer(10, 10),
			opts: []Option{WithDigest(DigestBLAKE2b)},
			exp:  "3b7fa24c99516cfee0cc68a8670eae28e9f4636460b4a8c09feeef5409504bff",
		},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContentSignature(tt.img, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.exp, got)
		})
	}
}

func TestContentSignatureChanges(t *testing.T) {
	img := texture(32, 32)
	a, err := ContentSignature(img)
	require.NoError(t, err)

	mutated := img.Clone()
	mutated.Pix[100] ^= 1
	b, err := ContentSignature(mutated)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDigest(t *testing.T) {
	for _, d := range []Digest{DigestMD5, DigestBLAKE2b} {
		got, err := ParseDigest(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDigest("sha1")
	assert.Error(t, err)

	_, err = ContentSignature(stego.NewImageBuffer(1, 1), WithDigest(Digest(9)))
	assert.Error(t, err)
}
