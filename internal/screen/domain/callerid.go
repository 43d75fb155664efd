package domain

// CallerID is the identifier presented with an incoming call.
// The zero value is a private (withheld) caller.
type CallerID struct {
	value   string
	present bool
}

// NewCallerID returns a present caller identifier holding the raw value.
// The value is kept as presented; normalization happens at comparison time.
func NewCallerID(raw string) CallerID {
	return CallerID{value: raw, present: true}
}

// PrivateCaller returns an absent caller identifier.
func PrivateCaller() CallerID { return CallerID{} }

// CallerIDFromPtr maps a nil pointer to a private caller and anything else to
// a present identifier.
func CallerIDFromPtr(raw *string) CallerID {
	if raw == nil {
		return PrivateCaller()
	}
	return NewCallerID(*raw)
}

// Value returns the raw identifier and whether one was presented.
func (c CallerID) Value() (string, bool) { return c.value, c.present }

// IsPrivate reports whether the caller withheld its identifier.
func (c CallerID) IsPrivate() bool { return !c.present }

// String returns the raw identifier, or "private" when absent.
func (c CallerID) String() string {
	if !c.present {
		return "private"
	}
	return c.value
}
