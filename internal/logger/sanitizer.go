package logger

import (
	"fmt"
	"strings"
)

// Sanitizer neutralizes control characters in log text. Filenames from the
// rotation folders flow into almost every message this tool writes, and a
// crafted name with embedded newlines or terminal escapes could otherwise
// forge or mangle audit lines. Printable text, multibyte included, passes
// through unchanged.
type Sanitizer struct{}

// NewSanitizer creates a sanitizer.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Sanitize escapes control characters in a string.
func (s *Sanitizer) Sanitize(input string) string {
	if !strings.ContainsFunc(input, isControl) {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + 8)
	for _, r := range input {
		if isControl(r) {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SanitizeArgs sanitizes logging arguments. String and error values are
// escaped in place; other value types render through slog untouched.
func (s *Sanitizer) SanitizeArgs(args []any) []any {
	if len(args) == 0 {
		return args
	}

	result := make([]any, len(args))
	copy(result, args)

	for i, arg := range result {
		switch v := arg.(type) {
		case string:
			result[i] = s.Sanitize(v)
		case error:
			if v != nil {
				result[i] = s.Sanitize(v.Error())
			}
		}
	}

	return result
}

// isControl reports C0 and C1 control characters plus DEL.
func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f)
}
