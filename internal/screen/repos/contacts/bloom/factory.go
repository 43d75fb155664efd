package bloom

import (
	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts"
)

// MinCapacity is the smallest contact count a filter is sized for, so an
// empty or tiny address book still gets a usable filter.
const MinCapacity = 1024

type factory struct {
	sizer contacts.BloomSizer
}

// NewFactory returns a BloomFactory sizing filters with NewSizer.
func NewFactory() contacts.BloomFactory { return factory{sizer: NewSizer()} }

// New returns a filter for capacity contacts (at least MinCapacity) at fpRate.
func (f factory) New(capacity uint64, fpRate float64) contacts.BloomFilter {
	m, k := f.sizer.Size(max(capacity, MinCapacity), fpRate)
	return newFilter(m, k)
}
