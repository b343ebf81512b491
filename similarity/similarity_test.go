package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/lsb"
	"github.com/yyyoichi/stego_zero/phash"
)

func fp(t *testing.T, algo phash.Algorithm, hex string) phash.Fingerprint {
	t.Helper()
	f, err := phash.ParseFingerprint(algo, hex)
	require.NoError(t, err)
	return f
}

func solid(r, g, b uint8) *stego.ImageBuffer {
	img := stego.NewImageBuffer(100, 100)
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
	return img
}

func TestHamming(t *testing.T) {
	test := []struct {
		name  string
		a, b  phash.Fingerprint
		exp   int
		score float64
	}{
		{name: "equal", a: fp(t, phash.AlgoPHash, "ffffffffffffffff"), b: fp(t, phash.AlgoPHash, "ffffffffffffffff"), exp: 0, score: 100},
		{name: "one bit", a: fp(t, phash.AlgoPHash, "0000000000000000"), b: fp(t, phash.AlgoPHash, "0000000000000001"), exp: 1, score: 98.4375},
		{name: "complement", a: fp(t, phash.AlgoDHash, "00000000ffffffff"), b: fp(t, phash.AlgoDHash, "ffffffff00000000"), exp: 64, score: 0},
		{name: "half", a: fp(t, phash.AlgoDHash, "0000000000000000"), b: fp(t, phash.AlgoDHash, "00000000ffffffff"), exp: 32, score: 50},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Hamming(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.exp, d)

			s1, err := Score(tt.a, tt.b)
			require.NoError(t, err)
			s2, err := Score(tt.b, tt.a)
			require.NoError(t, err)
			assert.Equal(t, tt.score, s1)
			assert.Equal(t, s1, s2)
		})
	}
}

func TestHammingMismatch(t *testing.T) {
	_, err := Hamming(fp(t, phash.AlgoPHash, "ffff"), fp(t, phash.AlgoPHash, "ffffffff"))
	assert.ErrorIs(t, err, stego.ErrFingerprintLengthMismatch)

	_, err = Hamming(fp(t, phash.AlgoPHash, "ffff"), fp(t, phash.AlgoDHash, "ffff"))
	assert.ErrorIs(t, err, stego.ErrFingerprintLengthMismatch)

	_, err = Score(phash.Fingerprint{}, phash.Fingerprint{})
	assert.ErrorIs(t, err, stego.ErrFingerprintLengthMismatch)
}

func TestCompare(t *testing.T) {
	t.Run("identical images", func(t *testing.T) {
		a, err := phash.Hashes(solid(255, 0, 0))
		require.NoError(t, err)
		b, err := phash.Hashes(solid(255, 0, 0))
		require.NoError(t, err)

		res, err := Compare(a, b)
		require.NoError(t, err)
		assert.Equal(t, Result{PHash: 100, DHash: 100, Average: 100, Identical: true, Similar: true}, res)
	})
	t.Run("red and blue", func(t *testing.T) {
		a, err := phash.Hashes(solid(255, 0, 0))
		require.NoError(t, err)
		b, err := phash.Hashes(solid(0, 0, 255))
		require.NoError(t, err)

		res, err := Compare(a, b)
		require.NoError(t, err)
		assert.Less(t, res.Average, DefaultSimilarThreshold)
		assert.Equal(t, 34.38, res.Average)
		assert.False(t, res.Similar)
		assert.False(t, res.Identical)
	})
	t.Run("lsb carrier of a solid image", func(t *testing.T) {
		src := solid(200, 30, 30)
		carrier, err := lsb.Embed(t.Context(), src, []byte("HELLO"))
		require.NoError(t, err)
		mutated := src.Clone()
		mutated.Pix[15000] ^= 1

		a, err := phash.Hashes(src)
		require.NoError(t, err)
		for _, img := range []*stego.ImageBuffer{carrier, mutated} {
			b, err := phash.Hashes(img)
			require.NoError(t, err)
			res, err := Compare(a, b)
			require.NoError(t, err)
			assert.True(t, res.Identical)
		}
	})
	t.Run("thresholds", func(t *testing.T) {
		base := phash.Set{
			PHash: fp(t, phash.AlgoPHash, "0000000000000000"),
			DHash: fp(t, phash.AlgoDHash, "0000000000000000"),
		}
		test := []struct {
			name      string
			phash     string
			identical bool
			similar   bool
		}{
			// 3 bits: 95.3125 on pHash, 100 on dHash.
			{name: "identical", phash: "0000000000000007", identical: true, similar: true},
			// 6 bits: 90.625 + 100 = 95.3125 average.
			{name: "still identical", phash: "000000000000003f", identical: true, similar: true},
			// 13 bits: 79.6875 + 100 = 89.84 average.
			{name: "similar", phash: "0000000000001fff", similar: true},
			// 20 bits: 68.75 + 100 = 84.375 average.
			{name: "different", phash: "00000000000fffff"},
		}
		for _, tt := range test {
			t.Run(tt.name, func(t *testing.T) {
				other := base
				other.PHash = fp(t, phash.AlgoPHash, tt.phash)
				res, err := Compare(base, other)
				require.NoError(t, err)
				assert.Equal(t, tt.identical, res.Identical)
				assert.Equal(t, tt.similar, res.Similar)
			})
		}
	})
	t.Run("only dHash", func(t *testing.T) {
		a := phash.Set{DHash: fp(t, phash.AlgoDHash, "0000000000000000")}
		b := phash.Set{DHash: fp(t, phash.AlgoDHash, "00000000000000ff"), PHash: fp(t, phash.AlgoPHash, "00")}
		res, err := Compare(a, b)
		require.NoError(t, err)
		assert.Equal(t, 87.5, res.Average)
		assert.Zero(t, res.PHash)
	})
	t.Run("nothing comparable", func(t *testing.T) {
		_, err := Compare(phash.Set{}, phash.Set{})
		assert.ErrorIs(t, err, stego.ErrFingerprintLengthMismatch)
	})
}

func TestNew(t *testing.T) {
	_, err := New(WithIdenticalThreshold(101))
	assert.Error(t, err)
	_, err = New(WithSimilarThreshold(99))
	assert.Error(t, err)

	s, err := New(WithSimilarThreshold(50), WithIdenticalThreshold(60))
	require.NoError(t, err)
	res, err := s.Compare(
		phash.Set{PHash: fp(t, phash.AlgoPHash, "0000000000000000")},
		phash.Set{PHash: fp(t, phash.AlgoPHash, "00000000ffffffff")},
	)
	require.NoError(t, err)
	assert.True(t, res.Similar)
	assert.False(t, res.Identical)
}
