package similarity

import (
	"cmp"
	"slices"
	"sync"

	"github.com/yyyoichi/stego_zero/phash"
)

// DefaultSearchThreshold is the minimum average score of FindSimilar.
const DefaultSearchThreshold = 85.0

// Match is one FindSimilar hit.
type Match struct {
	ID     string                      `json:"id"`
	Score  float64                     `json:"score"`
	Scores map[phash.Algorithm]float64 `json:"scores"`
}

// Index is an in-memory collection of fingerprint sets. It is safe for
// concurrent use.
type Index struct {
	mu      sync.RWMutex
	entries map[string]phash.Set
	algos   []phash.Algorithm
}

func NewIndex(opts ...IndexOption) (*Index, error) {
	ix := &Index{
		entries: make(map[string]phash.Set),
		algos:   []phash.Algorithm{phash.AlgoPHash, phash.AlgoDHash, phash.AlgoAHash},
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// Add stores set under id, replacing any previous entry.
func (ix *Index) Add(id string, set phash.Set) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries[id] = set
}

// Remove deletes id and reports whether it was present.
func (ix *Index) Remove(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	_, ok := ix.entries[id]
	delete(ix.entries, id)
	return ok
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// FindSimilar returns the entries whose average score against set is at
// least threshold percent, best first. Algorithms missing or of a different
// length on either side are left out of an entry's average; entries with
// nothing comparable are skipped.
func (ix *Index) FindSimilar(set phash.Set, threshold float64) []Match {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var matches []Match
	for id, entry := range ix.entries {
		scores := make(map[phash.Algorithm]float64, len(ix.algos))
		var sum float64
		for _, algo := range ix.algos {
			a, b := set.Get(algo), entry.Get(algo)
			if a.IsZero() || b.IsZero() {
				continue
			}
			score, err := Score(a, b)
			if err != nil {
				continue
			}
			scores[algo] = round2(score)
			sum += score
		}
		if len(scores) == 0 {
			continue
		}
		avg := sum / float64(len(scores))
		if avg < threshold {
			continue
		}
		matches = append(matches, Match{ID: id, Score: round2(avg), Scores: scores})
	}
	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return matches
}
