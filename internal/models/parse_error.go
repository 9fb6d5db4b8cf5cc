package models

import "fmt"

// ParseError is a diagnostic for a command the decoder skipped.
// Decoding continues past every ParseError.
type ParseError struct {
	Line    int    `json:"line" msgpack:"line"`
	Content string `json:"content" msgpack:"content"`
	Reason  string `json:"reason" msgpack:"reason"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Content)
}
