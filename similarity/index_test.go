package similarity

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/stego_zero/phash"
)

func TestIndex(t *testing.T) {
	ix, err := NewIndex()
	require.NoError(t, err)

	set := func(p, d, a string) phash.Set {
		return phash.Set{
			PHash: fp(t, phash.AlgoPHash, p),
			DHash: fp(t, phash.AlgoDHash, d),
			AHash: fp(t, phash.AlgoAHash, a),
		}
	}
	query := set("0000000000000000", "0000000000000000", "0000000000000000")
	ix.Add("same", query)
	ix.Add("close", set("0000000000000003", "0000000000000001", "0000000000000000"))
	ix.Add("far", set("ffffffffffffffff", "ffffffff00000000", "0000000000000000"))
	ix.Add("no ahash", phash.Set{PHash: fp(t, phash.AlgoPHash, "000000000000000f")})
	ix.Add("other length", phash.Set{PHash: fp(t, phash.AlgoPHash, "00")})
	assert.Equal(t, 5, ix.Len())

	matches := ix.FindSimilar(query, DefaultSearchThreshold)
	require.Len(t, matches, 3)
	assert.Equal(t, "same", matches[0].ID)
	assert.Equal(t, 100.0, matches[0].Score)
	assert.Equal(t, "close", matches[1].ID)
	assert.Equal(t, 98.44, matches[1].Score)
	assert.Equal(t, map[phash.Algorithm]float64{
		phash.AlgoPHash: 96.88,
		phash.AlgoDHash: 98.44,
		phash.AlgoAHash: 100,
	}, matches[1].Scores)
	assert.Equal(t, "no ahash", matches[2].ID)
	assert.Equal(t, 93.75, matches[2].Score)

	assert.True(t, ix.Remove("same"))
	assert.False(t, ix.Remove("same"))
	assert.Len(t, ix.FindSimilar(query, DefaultSearchThreshold), 2)
	assert.Len(t, ix.FindSimilar(query, 0), 3)
}

func TestIndexAlgorithms(t *testing.T) {
	_, err := NewIndex(WithAlgorithms())
	assert.Error(t, err)

	ix, err := NewIndex(WithAlgorithms(phash.AlgoWHash))
	require.NoError(t, err)
	ix.Add("a", phash.Set{PHash: fp(t, phash.AlgoPHash, "0000000000000000")})
	assert.Empty(t, ix.FindSimilar(phash.Set{PHash: fp(t, phash.AlgoPHash, "0000000000000000")}, 0))
}

func TestIndexConcurrent(t *testing.T) {
	ix, err := NewIndex()
	require.NoError(t, err)
	query := phash.Set{PHash: fp(t, phash.AlgoPHash, "0000000000000000")}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				ix.Add(fmt.Sprintf("%d-%d", i, j), query)
				_ = ix.FindSimilar(query, DefaultSearchThreshold)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, ix.Len())
}
