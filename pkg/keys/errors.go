package keys

import (
	"errors"
	"fmt"
)

// ErrKeyMismatch is returned by Verify when the public key on disk is not the
// public half of the private key on disk.
var ErrKeyMismatch = errors.New("public key does not match private key")

// KeyGenError is returned when a key pair cannot be generated or written.
type KeyGenError struct {
	Path string
	Err  error
}

func (e *KeyGenError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("generating key pair: %v", e.Err)
	}
	return fmt.Sprintf("generating key pair: %s: %v", e.Path, e.Err)
}

func (e *KeyGenError) Unwrap() error {
	return e.Err
}

// KeyLoadError is returned when a persisted key is missing or malformed.
type KeyLoadError struct {
	Path string
	Err  error
}

func (e *KeyLoadError) Error() string {
	return fmt.Sprintf("loading key %s: %v", e.Path, e.Err)
}

func (e *KeyLoadError) Unwrap() error {
	return e.Err
}
