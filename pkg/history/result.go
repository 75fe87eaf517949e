package history

// LoadStatus describes how Load populated the store.
type LoadStatus int

const (
	// LoadStatusLoaded means the history file was decrypted and decoded.
	LoadStatusLoaded LoadStatus = iota

	// LoadStatusMissing means there was no history file; the log is empty.
	LoadStatusMissing

	// LoadStatusCorrupt means the file existed but could not be read,
	// decrypted, or decoded; the log was reset to empty.
	LoadStatusCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case LoadStatusLoaded:
		return "loaded"
	case LoadStatusMissing:
		return "missing"
	case LoadStatusCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// LoadResult reports the outcome of Load. Err is set only for
// LoadStatusCorrupt.
type LoadResult struct {
	Status LoadStatus
	Count  int
	Err    error
}

// OK reports whether the history was restored from disk.
func (r LoadResult) OK() bool {
	return r.Status == LoadStatusLoaded
}
