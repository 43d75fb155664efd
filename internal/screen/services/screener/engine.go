package screener

import (
	"sync/atomic"

	"github.com/haukened/rr-callscreen/internal/screen/common/utils"
	"github.com/haukened/rr-callscreen/internal/screen/domain"
)

// Engine holds the active rule snapshot and evaluates callers against it.
//
// Evaluation is pure: no I/O, no logging, no mutation. The only state is the
// snapshot pointer, swapped whole by UpdateSettings, so every evaluation sees
// exactly one RuleSettings value.
type Engine struct {
	settings atomic.Pointer[domain.RuleSettings]
	contacts ContactLookup
}

// NewEngine returns an Engine serving initial. contacts may be nil, in which
// case no caller is ever found in contacts.
func NewEngine(initial domain.RuleSettings, contacts ContactLookup) *Engine {
	e := &Engine{contacts: contacts}
	e.settings.Store(&initial)
	return e
}

// UpdateSettings atomically replaces the active snapshot used by later calls
// to Decide. Evaluations already in flight keep the snapshot they loaded.
func (e *Engine) UpdateSettings(s domain.RuleSettings) {
	e.settings.Store(&s)
}

// Settings returns the active snapshot.
func (e *Engine) Settings() domain.RuleSettings {
	return *e.settings.Load()
}

// ShouldBlock reports whether caller must be blocked under settings.
func (e *Engine) ShouldBlock(caller domain.CallerID, settings domain.RuleSettings) bool {
	return Evaluate(caller, settings, e.contacts).Blocked
}

// Explain is ShouldBlock with the matching rule attached.
func (e *Engine) Explain(caller domain.CallerID, settings domain.RuleSettings) domain.BlockDecision {
	return Evaluate(caller, settings, e.contacts)
}

// Decide evaluates caller against the active snapshot.
func (e *Engine) Decide(caller domain.CallerID) domain.BlockDecision {
	return Evaluate(caller, *e.settings.Load(), e.contacts)
}

// ShouldBlock is the stateless form of Engine.ShouldBlock.
func ShouldBlock(caller domain.CallerID, settings domain.RuleSettings, contacts ContactLookup) bool {
	return Evaluate(caller, settings, contacts).Blocked
}

// Evaluate applies the rules in order, first match wins:
//
//  1. disabled                      -> allow
//  2. no caller identifier          -> BlockPrivate
//  3. BlockAll                      -> block
//  4. BlockUnknown and not a contact -> block
//  5. exact number or prefix match  -> block
//  6. otherwise                     -> allow
//
// Steps 1-4 look only at presence of the identifier; normalization applies
// to step 5. contacts is consulted only in step 4 and a nil contacts counts
// as "not in contacts".
func Evaluate(caller domain.CallerID, settings domain.RuleSettings, contacts ContactLookup) domain.BlockDecision {
	if !settings.Enabled() {
		return domain.BlockDecision{Reason: domain.ReasonDisabled}
	}

	raw, ok := caller.Value()
	if !ok {
		return domain.BlockDecision{Blocked: settings.BlockPrivate(), Reason: domain.ReasonPrivate}
	}

	if settings.BlockAll() {
		return domain.BlockDecision{Blocked: true, Reason: domain.ReasonBlockAll}
	}

	if settings.BlockUnknown() && !inContacts(contacts, raw) {
		return domain.BlockDecision{Blocked: true, Reason: domain.ReasonUnknown}
	}

	id := utils.NormalizeCallerID(raw)
	if settings.HasNumber(id) {
		return domain.BlockDecision{Blocked: true, Reason: domain.ReasonNumber, MatchedRule: id}
	}
	if p, ok := settings.MatchPrefix(id); ok {
		return domain.BlockDecision{Blocked: true, Reason: domain.ReasonPrefix, MatchedRule: p}
	}
	return domain.EmptyDecision()
}

func inContacts(contacts ContactLookup, id string) bool {
	if contacts == nil {
		return false
	}
	return contacts.IsInContacts(id)
}
