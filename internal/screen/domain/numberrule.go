package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/haukened/rr-callscreen/internal/screen/common/utils"
)

// NumberRuleKind defines how a rule matches caller identifiers.
//
// exact  - matches the identifier only (normalized equality)
// prefix - matches any identifier that starts with the value
type NumberRuleKind uint8

const (
	// NumberRuleExact matches only the exact identifier.
	NumberRuleExact NumberRuleKind = iota
	// NumberRulePrefix matches every identifier starting with the value.
	NumberRulePrefix
)

// String returns a stable string representation of the rule kind.
func (k NumberRuleKind) String() string {
	switch k {
	case NumberRuleExact:
		return "exact"
	case NumberRulePrefix:
		return "prefix"
	default:
		return fmt.Sprintf("NumberRuleKind(%d)", k)
	}
}

// NumberRule is a single blocked number or prefix read from a list file.
//
// Value is always stored normalized. Source identifies the list the rule
// came from and AddedAt records when it was read.
type NumberRule struct {
	Value   string
	Kind    NumberRuleKind
	Source  string
	AddedAt time.Time
}

// NewNumberRule constructs a NumberRule, normalizing the value, and validates it.
func NewNumberRule(value string, kind NumberRuleKind, source string, addedAt time.Time) (NumberRule, error) {
	r := NumberRule{
		Value:   utils.NormalizeCallerID(strings.TrimSpace(value)),
		Kind:    kind,
		Source:  strings.TrimSpace(source),
		AddedAt: addedAt,
	}
	if err := r.Validate(); err != nil {
		return NumberRule{}, err
	}
	return r, nil
}

// Validate checks the NumberRule for required fields and supported values.
func (r NumberRule) Validate() error {
	if r.Value == "" {
		return fmt.Errorf("rule value must not be empty")
	}
	if r.Source == "" {
		return fmt.Errorf("rule source must not be empty")
	}
	if r.AddedAt.IsZero() {
		return fmt.Errorf("rule addedAt must be set")
	}
	switch r.Kind {
	case NumberRuleExact, NumberRulePrefix:
	default:
		return fmt.Errorf("unsupported NumberRuleKind: %d", r.Kind)
	}
	return nil
}

// IsExact returns true when the rule kind is exact.
func (r NumberRule) IsExact() bool { return r.Kind == NumberRuleExact }

