package log

import "strings"

// decorated rewrites the fields of every entry before passing it on.
type decorated struct {
	next Logger
	edit func(map[string]any) map[string]any
}

func (d *decorated) Info(f map[string]any, msg string)  { d.next.Info(d.edit(f), msg) }
func (d *decorated) Error(f map[string]any, msg string) { d.next.Error(d.edit(f), msg) }
func (d *decorated) Debug(f map[string]any, msg string) { d.next.Debug(d.edit(f), msg) }
func (d *decorated) Warn(f map[string]any, msg string)  { d.next.Warn(d.edit(f), msg) }
func (d *decorated) Panic(f map[string]any, msg string) { d.next.Panic(d.edit(f), msg) }
func (d *decorated) Fatal(f map[string]any, msg string) { d.next.Fatal(d.edit(f), msg) }

// WithFields returns a Logger adding fields to every entry. Fields passed
// with an entry win over these.
func WithFields(l Logger, fields map[string]any) Logger {
	return &decorated{next: l, edit: func(f map[string]any) map[string]any {
		out := make(map[string]any, len(fields)+len(f))
		for k, v := range fields {
			out[k] = v
		}
		for k, v := range f {
			out[k] = v
		}
		return out
	}}
}

// Named tags every entry with a "component" field.
func Named(l Logger, component string) Logger {
	return WithFields(l, map[string]any{"component": component})
}

// Redacting returns a Logger that masks phone numbers found under keys with
// MaskCallerID. Entry maps passed in are never modified.
func Redacting(l Logger, keys ...string) Logger {
	return &decorated{next: l, edit: func(f map[string]any) map[string]any {
		var out map[string]any
		for _, k := range keys {
			s, ok := f[k].(string)
			if !ok {
				continue
			}
			if out == nil {
				out = make(map[string]any, len(f))
				for k, v := range f {
					out[k] = v
				}
			}
			out[k] = MaskCallerID(s)
		}
		if out == nil {
			return f
		}
		return out
	}}
}

// visibleDigits is how many trailing digits MaskCallerID leaves readable.
const visibleDigits = 4

// MaskCallerID replaces every digit but the last four with '*', keeping
// separators, so "+1 555 0100" becomes "+* *** 0100". Values without
// digits, such as "private", are returned unchanged.
func MaskCallerID(id string) string {
	digits := 0
	for _, r := range id {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	hide := digits - visibleDigits
	if hide <= 0 {
		return id
	}

	var sb strings.Builder
	sb.Grow(len(id))
	for _, r := range id {
		if r >= '0' && r <= '9' && hide > 0 {
			sb.WriteByte('*')
			hide--
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
