package contacts

// CacheStats reports lightweight cache metrics.
// All fields are best-effort snapshots and may be updated concurrently.
type CacheStats struct {
	Capacity  int    // configured capacity (0 for disabled cache)
	Size      int    // current number of entries
	Hits      uint64 // total cache hits since construction
	Misses    uint64 // total cache misses since construction
	Evictions uint64 // total evictions since construction
}

// StoreStats reports lightweight store metrics and metadata.
type StoreStats struct {
	Version     uint64 // snapshot version (0 if unknown)
	UpdatedUnix int64  // last updated unix time (0 if unknown)
	Contacts    uint64 // number of stored identifiers
}

// BloomStats describes the active Bloom filter.
type BloomStats struct {
	Bits    uint64 // m
	Hashes  uint8  // k
	Entries uint64 // identifiers added since the filter was built
}

// RepoStats combines bloom, cache and store stats.
type RepoStats struct {
	Bloom BloomStats
	Cache CacheStats
	Store StoreStats
}
