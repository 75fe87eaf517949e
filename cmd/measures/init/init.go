// Package initcmder provides the init command for initializing a local
// .measures directory in the current working directory.
package initcmder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/pkg/config"
)

const (
	dirName    = ".measures"
	configFile = "config.toml"
)

const initLongDesc string = `Initialize a new .measures/ directory in the current working directory.

Creates a local .measures/ directory that takes precedence over the default
~/.measures/ directory, and writes a config.toml holding the default values
when none exists. Existing files are never overwritten.

Examples:
  measures init`

const initShortDesc string = "Initialize a local .measures/ directory"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit()
		},
	}

	return cmd
}

func runInit() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Printf("Already initialized: %s\n", dir)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .measures directory: %w", err)
		}
		fmt.Printf("Initialized .measures directory: %s\n", dir)
	}

	_, err = os.Stat(filepath.Join(dir, configFile))
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("checking config file: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(config.NewDefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("Wrote default config: %s\n", cfger.GetTarget())
	return nil
}
