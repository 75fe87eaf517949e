package history

import "fmt"

// SaveError is returned when the history cannot be serialized, encrypted, or
// written. The in-memory log is unaffected.
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving history to %s: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
