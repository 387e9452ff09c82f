package parser

import (
	"fmt"
	"regexp"
)

// Line grammars, compiled once. Ids are lowercase hex with a fixed width,
// indentation is tab characters specifically, and the separator between id
// and name is one or more whitespace characters.
var (
	vendorPattern           = regexp.MustCompile(`^([0-9a-f]{4})\s+(.+)$`)
	devicePattern           = regexp.MustCompile(`^\t([0-9a-f]{4})\s+(.+)$`)
	subsystemPattern        = regexp.MustCompile(`^\t\t([0-9a-f]{4})\s([0-9a-f]{4})\s+(.+)$`)
	deviceClassPattern      = regexp.MustCompile(`^C\s([0-9a-f]{2})\s+(.+)$`)
	deviceSubclassPattern   = regexp.MustCompile(`^\t([0-9a-f]{2})\s+(.+)$`)
	programInterfacePattern = regexp.MustCompile(`^\t\t([0-9a-f]{2})\s+(.+)$`)
)

// FormatError reports a line that was classified but does not match the
// grammar of its line type.
type FormatError struct {
	// Type is the classified type of the line.
	Type LineType

	// Line is the raw offending line.
	Line string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unable to process %s line: %q", e.Type, e.Line)
}

// matchLine applies the pattern for the given line type and returns the
// capture groups, excluding the full match.
func matchLine(pattern *regexp.Regexp, lineType LineType, line string) ([]string, error) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return nil, &FormatError{Type: lineType, Line: line}
	}
	return m[1:], nil
}
