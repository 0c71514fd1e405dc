package handlog

import "fmt"

// ParseError reports a malformed section, an unknown action verb or a
// missing required line, carrying the offending line so callers can log
// and skip the record.
type ParseError struct {
	Line    int
	Text    string
	Section string
	Reason  string
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("handlog: parse error (line=%d section=%s): %s: %q", e.Line, e.Section, e.Reason, e.Text)
}

func parseErr(ln line, section, reason string) *ParseError {
	return &ParseError{Line: ln.num, Text: ln.text, Section: section, Reason: reason}
}
