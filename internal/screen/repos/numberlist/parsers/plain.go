package parsers

import (
	"bufio"
	"io"
	"strings"
	"time"

	logpkg "github.com/haukened/rr-callscreen/internal/screen/common/log"
	"github.com/haukened/rr-callscreen/internal/screen/domain"
)

// ParsePlainList parses a newline-delimited list of phone numbers into NumberRule values.
// Default is exact; a trailing "*" marks a prefix ("+1 900*").
//
// Behavior:
// - Supports comments starting with '#' (inline or whole-line)
// - Normalizes values ('+' and spaces removed)
// - Skips empty lines; entries that are not all digits once normalized are
//   skipped with a warning
// - De-duplicates by normalized value and kind, keeping first-seen order
// - Each rule is attributed to the provided source and timestamped with now
func ParsePlainList(r io.Reader, source string, logger logpkg.Logger, now time.Time) ([]domain.NumberRule, error) {
	scanner := bufio.NewScanner(r)

	seen := make(map[string]struct{})
	out := make([]domain.NumberRule, 0, 64)
	logger.Debug(map[string]any{"source": source}, "parse_plain_list_start")
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			logger.Debug(map[string]any{"line": lineNum}, "skip_empty")
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			logger.Debug(map[string]any{"line": lineNum}, "skip_comment")
			continue
		}

		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		s := strings.TrimSpace(line)

		kind := ruleKindFromRaw(s)
		value := normalizeNumber(s)

		if !isValidNumber(value) {
			logger.Warn(map[string]any{"source": source, "line": lineNum, "raw": s}, "Invalid number list entry skipped")
			continue
		}

		seenKey := value + "|" + kind.String()
		if _, ok := seen[seenKey]; ok {
			logger.Debug(map[string]any{"line": lineNum, "value": value, "kind": kind.String()}, "skip_duplicate")
			continue
		}

		rule, err := domain.NewNumberRule(value, kind, source, now)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "value": value, "kind": kind.String(), "error": err.Error()}, "skip_constructor_error")
			continue
		}
		out = append(out, rule)
		seen[seenKey] = struct{}{}
		logger.Debug(map[string]any{"line": lineNum, "value": rule.Value, "kind": rule.Kind.String()}, "emit_rule")
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err.Error()}, "parse_plain_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_plain_list_done")
	return out, nil
}
