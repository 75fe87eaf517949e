package decoder

import "fmt"

// DecodeError is returned when a character outside the accepted alphabet is
// encountered while decoding. No partial result accompanies it.
type DecodeError struct {
	Char     byte
	Position int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid character %q at position %d", e.Char, e.Position)
}

// ValidationError is returned by Validate when an input fails the pre-decode
// character set check.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid sequence: " + e.Reason
}
