package dotdir

import (
	"path/filepath"
)

// Resolve returns name unchanged when it is absolute and otherwise joins it
// onto the target directory resolved from overrideDir.
func (m *Manager) Resolve(overrideDir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return name, nil
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, name), nil
}
