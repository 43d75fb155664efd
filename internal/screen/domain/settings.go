package domain

import (
	"sort"
	"strings"

	"github.com/haukened/rr-callscreen/internal/screen/common/utils"
)

// RuleSettingsOptions is the mutable input used to build a RuleSettings.
// Absent fields take their defaults: flags false, lists empty.
type RuleSettingsOptions struct {
	Enabled         bool
	BlockAll        bool
	BlockUnknown    bool
	BlockPrivate    bool
	BlockedNumbers  []string
	BlockedPrefixes []string
}

// AddRules appends the values of rules to the matching option list.
func (o *RuleSettingsOptions) AddRules(rules []NumberRule) {
	for _, r := range rules {
		switch r.Kind {
		case NumberRuleExact:
			o.BlockedNumbers = append(o.BlockedNumbers, r.Value)
		case NumberRulePrefix:
			o.BlockedPrefixes = append(o.BlockedPrefixes, r.Value)
		}
	}
}

// RuleSettings is an immutable snapshot of the screening rules.
//
// The zero value is the default configuration: disabled, every flag off and
// both lists empty. Stored numbers and prefixes are normalized and
// de-duplicated. An entry that normalizes to "" is kept and matches
// literally, so an empty prefix matches every identified caller. Values are
// shared between copies and never mutated after construction, so a
// RuleSettings may be read from any goroutine.
type RuleSettings struct {
	enabled      bool
	blockAll     bool
	blockUnknown bool
	blockPrivate bool
	numbers      map[string]struct{}
	prefixes     []string // sorted
}

// NewRuleSettings builds a snapshot from opts. This is the single place
// identifiers are normalized.
func NewRuleSettings(opts RuleSettingsOptions) RuleSettings {
	return RuleSettings{
		enabled:      opts.Enabled,
		blockAll:     opts.BlockAll,
		blockUnknown: opts.BlockUnknown,
		blockPrivate: opts.BlockPrivate,
		numbers:      normalizeSet(opts.BlockedNumbers),
		prefixes:     normalizeSorted(opts.BlockedPrefixes),
	}
}

// DefaultRuleSettings returns the disabled default snapshot.
func DefaultRuleSettings() RuleSettings { return RuleSettings{} }

func normalizeSet(in []string) map[string]struct{} {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[utils.NormalizeCallerID(s)] = struct{}{}
	}
	return out
}

func normalizeSorted(in []string) []string {
	set := normalizeSet(in)
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Enabled reports the master switch.
func (s RuleSettings) Enabled() bool { return s.enabled }

// BlockAll reports whether every identified call is blocked.
func (s RuleSettings) BlockAll() bool { return s.blockAll }

// BlockUnknown reports whether callers missing from contacts are blocked.
func (s RuleSettings) BlockUnknown() bool { return s.blockUnknown }

// BlockPrivate reports whether calls without an identifier are blocked.
func (s RuleSettings) BlockPrivate() bool { return s.blockPrivate }

// BlockedNumbers returns a sorted copy of the normalized exact-match list.
func (s RuleSettings) BlockedNumbers() []string {
	out := make([]string, 0, len(s.numbers))
	for n := range s.numbers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// BlockedPrefixes returns a sorted copy of the normalized prefix list.
func (s RuleSettings) BlockedPrefixes() []string {
	return append([]string(nil), s.prefixes...)
}

// HasNumber reports whether the normalized identifier is an exact blocked number.
func (s RuleSettings) HasNumber(normalized string) bool {
	_, ok := s.numbers[normalized]
	return ok
}

// MatchPrefix returns the first blocked prefix (in sorted order) that
// normalized starts with.
func (s RuleSettings) MatchPrefix(normalized string) (string, bool) {
	for _, p := range s.prefixes {
		if strings.HasPrefix(normalized, p) {
			return p, true
		}
	}
	return "", false
}

// Fields summarises the snapshot for structured logging.
func (s RuleSettings) Fields() map[string]any {
	return map[string]any{
		"enabled":          s.enabled,
		"block_all":        s.blockAll,
		"block_unknown":    s.blockUnknown,
		"block_private":    s.blockPrivate,
		"blocked_numbers":  len(s.numbers),
		"blocked_prefixes": len(s.prefixes),
	}
}

// The With* methods return a modified copy and leave s untouched. Each one
// changes only its own field.

// WithEnabled returns a copy with the master switch set to v.
func (s RuleSettings) WithEnabled(v bool) RuleSettings {
	s.enabled = v
	return s
}

// WithBlockAll returns a copy with block-all set to v.
func (s RuleSettings) WithBlockAll(v bool) RuleSettings {
	s.blockAll = v
	return s
}

// WithBlockUnknown returns a copy with block-unknown set to v.
func (s RuleSettings) WithBlockUnknown(v bool) RuleSettings {
	s.blockUnknown = v
	return s
}

// WithBlockPrivate returns a copy with block-private set to v.
func (s RuleSettings) WithBlockPrivate(v bool) RuleSettings {
	s.blockPrivate = v
	return s
}

// WithBlockedLists returns a copy with both lists replaced.
func (s RuleSettings) WithBlockedLists(numbers, prefixes []string) RuleSettings {
	s.numbers = normalizeSet(numbers)
	s.prefixes = normalizeSorted(prefixes)
	return s
}
