package storage

import "errors"

var (
	// ErrClosed is returned by drivers used after Close.
	ErrClosed = errors.New("storage driver closed")
)
