// Package paths resolves the effective configuration for a measures command
// and the on-disk locations it reads and writes.
package paths

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/pkg/config"
	"github.com/papercomputeco/measures/pkg/dotdir"
)

const (
	// LogFile is the JSON log written by "measures serve".
	LogFile = "measures.log"

	// memoryDSN is SQLite's in-memory database name; it is never resolved.
	memoryDSN = ":memory:"
)

// Paths holds the absolute locations a command operates on.
type Paths struct {
	// Dir is the resolved .measures/ directory.
	Dir string

	PrivateKey string
	PublicKey  string
	History    string
	SQLite     string
	Log        string
}

// Resolve turns the relative paths in cfg into absolute ones rooted at the
// .measures/ directory chosen by configDir.
func Resolve(configDir string, cfg *config.Config) (*Paths, error) {
	ddm := dotdir.NewManager()

	dir, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving measures dir: %w", err)
	}

	p := &Paths{Dir: dir}

	targets := []struct {
		dst  *string
		name string
	}{
		{&p.PrivateKey, cfg.Keys.PrivateKeyPath},
		{&p.PublicKey, cfg.Keys.PublicKeyPath},
		{&p.History, cfg.History.Path},
		{&p.Log, LogFile},
	}
	for _, t := range targets {
		resolved, err := ddm.Resolve(dir, t.name)
		if err != nil {
			return nil, err
		}
		*t.dst = resolved
	}

	p.SQLite = cfg.Storage.SQLitePath
	if p.SQLite != memoryDSN {
		p.SQLite, err = ddm.Resolve(dir, p.SQLite)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Load reads the layered configuration for cmd (flag > env > file >
// default), binding the given registry flags, and resolves its paths.
func Load(cmd *cobra.Command, flagKeys []string) (*config.Config, *Paths, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)

	cfg := config.FromViper(v)

	p, err := Resolve(configDir, cfg)
	if err != nil {
		return nil, nil, err
	}

	return cfg, p, nil
}
