package archive

import (
	"sync"

	"tilegate/internal/source"
)

// Resolver hands out one Reader per archive name. Readers keep their
// own resolved header/directory state, so reuse here is what makes
// repeat tile requests skip the header round trip. This cache is
// keyed by archive name and is independent of the HTTP edge cache.
type Resolver struct {
	src *source.Adapter

	mu      sync.Mutex
	readers map[string]Reader
}

func NewResolver(src *source.Adapter) *Resolver {
	return &Resolver{src: src, readers: make(map[string]Reader)}
}

func (r *Resolver) Reader(name string) Reader {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rd, ok := r.readers[name]; ok {
		return rd
	}
	rd := NewReader(name, r.src)
	r.readers[name] = rd
	return rd
}
