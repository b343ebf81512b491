package dct

import "sync"

// Cache shares DCT bases between goroutines, keyed by size.
type Cache struct {
	data sync.Map
}

type size struct{ w, h int }

func NewCache() *Cache {
	return &Cache{}
}

// New returns the cached DCT for w×h, building it on first use.
func (c *Cache) New(w, h int) *DCT {
	key := size{w, h}
	if v, ok := c.data.Load(key); ok {
		return v.(*DCT)
	}
	actual, _ := c.data.LoadOrStore(key, New(w, h))
	return actual.(*DCT)
}
