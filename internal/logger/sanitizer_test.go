package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitize_EscapesNewlines(t *testing.T) {
	s := NewSanitizer()

	got := s.Sanitize("2018-03-22\nINFO forged line")
	if strings.Contains(got, "\n") {
		t.Errorf("Expected newline escaped, got %q", got)
	}
	if !strings.Contains(got, `\x0a`) {
		t.Errorf("Expected \\x0a escape, got %q", got)
	}
}

func TestSanitize_EscapesTerminalEscapes(t *testing.T) {
	s := NewSanitizer()

	got := s.Sanitize("\x1b[31mred\x1b[0m")
	if strings.Contains(got, "\x1b") {
		t.Errorf("Expected ESC escaped, got %q", got)
	}
}

func TestSanitize_LeavesPlainTextAlone(t *testing.T) {
	s := NewSanitizer()

	in := "2018-03-22_backup.tar"
	if got := s.Sanitize(in); got != in {
		t.Errorf("Expected %q unchanged, got %q", in, got)
	}
}

func TestSanitize_LeavesMultibyteAlone(t *testing.T) {
	s := NewSanitizer()

	in := "資料_2018_03_22.tar"
	if got := s.Sanitize(in); got != in {
		t.Errorf("Expected %q unchanged, got %q", in, got)
	}
}

func TestSanitizeArgs(t *testing.T) {
	s := NewSanitizer()

	args := s.SanitizeArgs([]any{
		"file", "bad\nname.tar",
		"age", 37,
		"error", errors.New("open bad\rname: failed"),
	})

	if v, ok := args[1].(string); !ok || strings.Contains(v, "\n") {
		t.Errorf("Expected string value escaped, got %#v", args[1])
	}
	if v, ok := args[3].(int); !ok || v != 37 {
		t.Errorf("Expected non-string value untouched, got %#v", args[3])
	}
	if v, ok := args[5].(string); !ok || strings.Contains(v, "\r") {
		t.Errorf("Expected error value escaped, got %#v", args[5])
	}
}

func TestSanitizeArgs_Empty(t *testing.T) {
	s := NewSanitizer()
	if got := s.SanitizeArgs(nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}
