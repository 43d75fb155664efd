package bloom

import (
	"sync"

	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts"
)

// filter is a Bloom filter over normalized caller identifiers. The
// repository fills it once per rebuild and only reads it afterwards, but Add
// stays safe to call alongside lookups.
type filter struct {
	mu      sync.RWMutex
	bf      *bitsbloom.BloomFilter
	entries uint64
}

func newFilter(m uint64, k uint8) *filter {
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}

func (f *filter) Add(id string) {
	f.mu.Lock()
	f.bf.AddString(id)
	f.entries++
	f.mu.Unlock()
}

func (f *filter) MightContain(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.bf.TestString(id)
}

func (f *filter) Stats() contacts.BloomStats {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return contacts.BloomStats{
		Bits:    uint64(f.bf.Cap()),
		Hashes:  uint8(f.bf.K()),
		Entries: f.entries,
	}
}
