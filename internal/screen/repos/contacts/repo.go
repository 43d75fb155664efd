package contacts

import (
	"sync"

	"github.com/haukened/rr-callscreen/internal/screen/common/utils"
)

// repository implements Repository by composing a Store, a Bloom filter
// (via factory) and a LookupCache. Reads run bloom → cache → store; writes
// rebuild the store and then swap the filter and purge the cache together.
type repository struct {
	mu      sync.RWMutex
	store   Store
	cache   LookupCache
	bloom   BloomFilter
	gen     uint64 // bumped with every filter swap; guarded by mu
	factory BloomFactory
	fpRate  float64
}

// NewRepository constructs a Repository.
// fpRate is the target false-positive rate for the Bloom filter when rebuilding.
func NewRepository(store Store, cache LookupCache, factory BloomFactory, fpRate float64) Repository {
	return &repository{store: store, cache: cache, factory: factory, fpRate: fpRate}
}

// IsInContacts reports whether id is a stored contact.
// Policy: on internal errors, report not found.
func (r *repository) IsInContacts(id string) bool {
	if r == nil {
		return false
	}
	n := utils.NormalizeCallerID(id)
	if n == "" {
		return false
	}
	maybe, gen := r.checkBloom(n)
	if !maybe {
		return false
	}
	if found, ok := r.checkCache(n); ok {
		return found
	}
	found, err := r.store.Exists(n)
	if err != nil {
		return false
	}
	r.updateCache(n, found, gen)
	return found
}

// UpdateAll replaces the contact set. Identifiers are normalized and empty
// ones dropped before they reach the store.
func (r *repository) UpdateAll(ids []string, version uint64, updatedUnix int64) error {
	norm := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		n := utils.NormalizeCallerID(id)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		norm = append(norm, n)
	}

	if err := r.store.RebuildAll(norm, version, updatedUnix); err != nil {
		return err
	}

	bf := r.factory.New(uint64(len(norm)), r.fpRate)
	for _, n := range norm {
		bf.Add(n)
	}

	r.swap(bf)
	return nil
}

// Warm builds the Bloom filter from whatever the store already holds, so a
// persisted index is usable without re-reading the source list.
func (r *repository) Warm() error {
	st := r.store.Stats()
	bf := r.factory.New(st.Contacts, r.fpRate)
	if err := r.store.Visit(func(id string) bool {
		bf.Add(id)
		return true
	}); err != nil {
		return err
	}

	r.swap(bf)
	return nil
}

// Stats returns bloom, cache and store stats.
func (r *repository) Stats() RepoStats {
	r.mu.RLock()
	st := RepoStats{Cache: r.cache.Stats()}
	if r.bloom != nil {
		st.Bloom = r.bloom.Stats()
	}
	r.mu.RUnlock()
	st.Store = r.store.Stats()
	return st
}

// swap installs bf, starts a new generation and drops every cached answer
// from the previous one.
func (r *repository) swap(bf BloomFilter) {
	r.mu.Lock()
	r.bloom = bf
	r.gen++
	r.cache.Purge()
	r.mu.Unlock()
}

// checkBloom reports whether the store must be consulted (maybe-positive)
// along with the generation the answer belongs to. Without a filter, always
// maybe.
func (r *repository) checkBloom(n string) (bool, uint64) {
	r.mu.RLock()
	bf, gen := r.bloom, r.gen
	r.mu.RUnlock()
	if bf == nil {
		return true, gen
	}
	return bf.MightContain(n), gen
}

func (r *repository) checkCache(n string) (bool, bool) {
	r.mu.RLock()
	found, ok := r.cache.Get(n)
	r.mu.RUnlock()
	return found, ok
}

// updateCache stores a store answer unless the contact set was replaced
// since the lookup began.
func (r *repository) updateCache(n string, found bool, gen uint64) {
	r.mu.Lock()
	if r.gen == gen {
		r.cache.Put(n, found)
	}
	r.mu.Unlock()
}
