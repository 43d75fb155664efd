package parsers

import (
	"strings"

	"github.com/haukened/rr-callscreen/internal/screen/common/utils"
	"github.com/haukened/rr-callscreen/internal/screen/domain"
)

// maxNumberLen bounds an entry; E.164 tops out at 15 digits, extensions and
// service codes leave room above that.
const maxNumberLen = 32

// ruleKindFromRaw returns NumberRulePrefix when the raw entry ends in "*".
func ruleKindFromRaw(raw string) domain.NumberRuleKind {
	if strings.HasSuffix(strings.TrimSpace(raw), "*") {
		return domain.NumberRulePrefix
	}
	return domain.NumberRuleExact
}

// normalizeNumber strips the prefix marker and normalizes the identifier.
func normalizeNumber(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "*")
	return utils.NormalizeCallerID(strings.TrimSpace(raw))
}

// isValidNumber accepts non-empty all-digit values no longer than maxNumberLen.
func isValidNumber(value string) bool {
	if value == "" || len(value) > maxNumberLen {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
