// Package dateparse extracts calendar dates embedded in backup filenames.
package dateparse

import (
	"strings"
	"time"
)

const (
	prefixLayout     = "2006-01-02"
	underscoreLayout = "2006_01_02"

	// dateLen is the width of both layouts
	dateLen = 10
)

// Parse extracts the backup date embedded in a filename. Heuristics are tried
// in order and the first match wins:
//
//  1. the first ten bytes read as 2006-01-02
//  2. the ten bytes after the first underscore read as 2006_01_02
//
// Names that match neither are undated. An undated name is a normal outcome,
// never an error; callers skip such entries.
func Parse(name string) (time.Time, bool) {
	if d, ok := parseAt(name, 0, prefixLayout); ok {
		return d, true
	}

	idx := strings.IndexByte(name, '_')
	if idx < 0 {
		return time.Time{}, false
	}
	return parseAt(name, idx+1, underscoreLayout)
}

// parseAt parses the fixed-width date window starting at start. Out-of-range
// components (month 13, Feb 30) fail the parse and fall through like any
// other mismatch.
func parseAt(name string, start int, layout string) (time.Time, bool) {
	if start+dateLen > len(name) {
		return time.Time{}, false
	}
	d, err := time.Parse(layout, name[start:start+dateLen])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
