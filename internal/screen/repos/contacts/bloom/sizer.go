package bloom

import (
	"math"

	"github.com/haukened/rr-callscreen/internal/screen/repos/contacts"
)

// DefaultFPRate replaces false-positive rates outside (0, 1).
const DefaultFPRate = 0.01

// sizer implements contacts.BloomSizer with the optimal parameters for n
// entries at false-positive rate p:
//
//	m = -n * ln(p) / (ln 2)^2
//	k = (m / n) * ln 2
//
// n is raised to 1 and both results are at least 1.
type sizer struct{}

// NewSizer returns a BloomSizer implementation.
func NewSizer() contacts.BloomSizer { return sizer{} }

func (sizer) Size(n uint64, p float64) (uint64, uint8) {
	n = max(n, 1)
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		p = DefaultFPRate
	}
	m := optimalBits(n, p)
	return m, optimalHashes(m, n)
}

func optimalBits(n uint64, p float64) uint64 {
	m := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	return max(uint64(m), 1)
}

func optimalHashes(m, n uint64) uint8 {
	k := math.Round(float64(m) / float64(n) * math.Ln2)
	return uint8(math.Min(math.Max(k, 1), math.MaxUint8))
}
