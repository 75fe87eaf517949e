// Package versioncmder prints the build information stamped into the binary.
package versioncmder

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/pkg/cliui"
	"github.com/papercomputeco/measures/pkg/buildinfo"
)

type VersionCommander struct {
	out io.Writer
}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays version",
		Long:  "displays the version, commit and build time of this CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run()
		},
	}

	return cmd
}

func (c *VersionCommander) run() error {
	rows := [][2]string{
		{"Version: ", buildinfo.Version},
		{"Sha:     ", buildinfo.Sha},
		{"Built at:", buildinfo.Buildtime},
	}
	for _, r := range rows {
		cliui.Fprintf(c.out, "%s %s\n", cliui.KeyStyle.Render(r[0]), cliui.ValueStyle.Render(r[1]))
	}
	return nil
}
