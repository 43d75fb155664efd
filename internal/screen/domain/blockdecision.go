package domain

import "fmt"

// BlockReason names the rule that produced a BlockDecision.
type BlockReason uint8

const (
	// ReasonNone means no rule matched and the call is allowed.
	ReasonNone BlockReason = iota
	// ReasonDisabled means screening is switched off.
	ReasonDisabled
	// ReasonPrivate means the caller withheld its identifier.
	ReasonPrivate
	// ReasonBlockAll means every call is blocked.
	ReasonBlockAll
	// ReasonUnknown means the caller is not in the contact list.
	ReasonUnknown
	// ReasonNumber means the caller matched an exact blocked number.
	ReasonNumber
	// ReasonPrefix means the caller matched a blocked prefix.
	ReasonPrefix
)

// String returns a stable string representation of the reason.
func (r BlockReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonDisabled:
		return "disabled"
	case ReasonPrivate:
		return "private"
	case ReasonBlockAll:
		return "block_all"
	case ReasonUnknown:
		return "unknown"
	case ReasonNumber:
		return "number"
	case ReasonPrefix:
		return "prefix"
	default:
		return fmt.Sprintf("BlockReason(%d)", r)
	}
}

// BlockDecision is the outcome of evaluating one caller against a settings snapshot.
// Pure value type, no external dependencies.
//
// Reason is set for allow decisions too: ReasonDisabled and ReasonPrivate can
// both end in an allow.
type BlockDecision struct {
	Blocked     bool
	Reason      BlockReason
	MatchedRule string // normalized number or prefix for ReasonNumber / ReasonPrefix
}

// EmptyDecision returns a not-blocked decision with no matching rule.
func EmptyDecision() BlockDecision { return BlockDecision{Blocked: false, Reason: ReasonNone} }
