package contacts

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is a fast negative check over normalized identifiers.
type BloomFilter interface {
	Add(id string)
	MightContain(id string) bool
	Stats() BloomStats
}

// BloomFactory builds filters sized for a dataset.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// LookupCache caches contact lookups by normalized identifier.
type LookupCache interface {
	Get(id string) (found bool, ok bool)
	Put(id string, found bool)
	Len() int
	Purge()
	Stats() CacheStats
}

// Store abstracts the persistent contact index.
// - Exists: presence of a normalized identifier
// - RebuildAll: atomically replace every entry and the metadata
// - Visit: iterate every stored identifier, stop when visit returns false
type Store interface {
	Exists(id string) (bool, error)
	RebuildAll(ids []string, version uint64, updatedUnix int64) error
	Visit(visit func(id string) bool) error
	Stats() StoreStats
	Close() error
}

// Repository is the composition layer that wires bloom → cache → store.
// IsInContacts never fails: internal errors read as "not in contacts".
type Repository interface {
	IsInContacts(id string) bool
	UpdateAll(ids []string, version uint64, updatedUnix int64) error
	Warm() error
	Stats() RepoStats
}
