// Package history owns the secure interaction history: an append-only,
// in-memory log of decoded measurements that is envelope-encrypted to disk at
// shutdown and restored at startup.
package history

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/papercomputeco/measures/pkg/envelope"
)

const historyFilePerm = 0o600

// Store is the single owner of the history log. All methods are safe for
// concurrent use.
type Store struct {
	// mu guards entries
	mu      sync.Mutex
	entries []Entry

	path   string
	logger *slog.Logger
}

// NewStore creates an empty store persisted at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		entries: []Entry{},
		path:    path,
		logger:  logger,
	}
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory log with the contents of the history file.
// It never fails: a missing file or any read, decrypt, or decode error leaves
// the store empty, and the returned LoadResult says which case occurred.
func (s *Store) Load(priv *rsa.PrivateKey) LoadResult {
	entries, result := s.read(priv)

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	return result
}

func (s *Store) read(priv *rsa.PrivateKey) ([]Entry, LoadResult) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, LoadResult{Status: LoadStatusMissing}
	}
	if err != nil {
		return []Entry{}, LoadResult{Status: LoadStatusCorrupt, Err: fmt.Errorf("reading history: %w", err)}
	}

	plaintext, err := envelope.Decrypt(data, priv)
	if err != nil {
		return []Entry{}, LoadResult{Status: LoadStatusCorrupt, Err: err}
	}

	var entries []Entry
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return []Entry{}, LoadResult{Status: LoadStatusCorrupt, Err: fmt.Errorf("decoding history: %w", err)}
	}
	if entries == nil {
		entries = []Entry{}
	}

	return entries, LoadResult{Status: LoadStatusLoaded, Count: len(entries)}
}

// Append adds an entry to the end of the log. It does not persist.
func (s *Store) Append(entry Entry) {
	entry = entry.clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
}

// Entries returns a copy of the log, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of entries in the log.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Save encrypts the full log for pub and overwrites the history file. The
// file is replaced atomically so a failed save never leaves a truncated file
// behind.
func (s *Store) Save(pub *rsa.PublicKey) error {
	data, err := json.Marshal(s.Entries())
	if err != nil {
		return &SaveError{Path: s.path, Err: fmt.Errorf("encoding history: %w", err)}
	}

	sealed, err := envelope.Encrypt(data, pub)
	if err != nil {
		return &SaveError{Path: s.path, Err: err}
	}

	if err := writeFileAtomic(s.path, sealed); err != nil {
		return &SaveError{Path: s.path, Err: err}
	}

	return nil
}

// Persist saves the log and logs the outcome. Failures are not returned so a
// deferred Persist can never abort shutdown.
func (s *Store) Persist(pub *rsa.PublicKey) {
	if err := s.Save(pub); err != nil {
		s.logger.Error("failed to save secure history",
			"path", s.path,
			"error", err,
		)
		return
	}

	s.logger.Info("secure history saved",
		"path", s.path,
		"entries", s.Len(),
	)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(historyFilePerm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing history file: %w", err)
	}

	return nil
}
