package utils

import "strings"

var callerIDStripper = strings.NewReplacer("+", "", " ", "")

// NormalizeCallerID returns a caller identifier in comparable form:
// - every '+' removed
// - every ' ' (U+0020) removed
// Nothing else is touched. Country codes are not canonicalized, so
// "+1 555" and "555" stay distinct.
func NormalizeCallerID(id string) string {
	return callerIDStripper.Replace(id)
}
