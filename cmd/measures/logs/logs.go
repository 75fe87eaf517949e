// Package logscmder provides the logs command for reading the JSON log that
// "measures serve" writes to the .measures/ directory.
package logscmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/cmd/measures/paths"
)

const logsLongDesc string = `Print the server log.

"measures serve" appends one JSON object per line to measures.log in the
.measures/ directory. With --follow, new lines are printed as they are
written until interrupted.

Examples:
  measures logs
  measures logs --follow`

const logsShortDesc string = "Print the server log"

type logsCommander struct {
	follow bool
	out    io.Writer
}

func NewLogsCmd() *cobra.Command {
	cmder := &logsCommander{}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: logsShortDesc,
		Long:  logsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, p, err := paths.Load(cmd, nil)
			if err != nil {
				return err
			}
			cmder.out = cmd.OutOrStdout()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return cmder.run(ctx, p.Log)
		},
	}

	cmd.Flags().BoolVarP(&cmder.follow, "follow", "f", false, "Keep printing new log lines as they are written")

	return cmd
}

func (c *logsCommander) run(ctx context.Context, path string) error {
	if !c.follow {
		return printLog(path, c.out)
	}

	err := followLog(ctx, path, c.out)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func printLog(path string, out io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no log file at %s; has \"measures serve\" been run?", path)
		}
		return fmt.Errorf("opening log file: %w", err)
	}
	defer file.Close()

	_, err = io.Copy(out, file)
	return err
}

// followLog prints the whole log, then every write to it until ctx ends.
func followLog(ctx context.Context, path string, out io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer file.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating log watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching log dir: %w", err)
	}

	buf := make([]byte, 4096)
	readAvailable := func() error {
		for {
			n, err := file.Read(buf)
			if n > 0 {
				if _, writeErr := out.Write(buf[:n]); writeErr != nil {
					return writeErr
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
	}

	if err := readAvailable(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := readAvailable(); err != nil {
				return err
			}
		case err := <-watcher.Errors:
			return fmt.Errorf("log watcher error: %w", err)
		}
	}
}
