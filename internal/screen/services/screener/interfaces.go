package screener

import (
	"context"

	"github.com/haukened/rr-callscreen/internal/screen/domain"
)

// ContactLookup reports whether a caller identifier belongs to the user's contacts.
// Implementations must fold their own failures into false.
type ContactLookup interface {
	IsInContacts(id string) bool
}

// ContactLookupFunc adapts a plain function to ContactLookup.
type ContactLookupFunc func(id string) bool

// IsInContacts calls f(id).
func (f ContactLookupFunc) IsInContacts(id string) bool { return f(id) }

// CallTerminator ends a call on the platform side.
// The engine never calls it; the Service does once a call is blocked.
type CallTerminator interface {
	Terminate(ctx context.Context, call domain.IncomingCall) error
}

// Recorder receives screening telemetry. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveDecision(d domain.BlockDecision)
	ObserveTermination(err error)
	ObserveSettings(s domain.RuleSettings)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDecision(domain.BlockDecision) {}
func (nopRecorder) ObserveTermination(error)             {}
func (nopRecorder) ObserveSettings(domain.RuleSettings)  {}
