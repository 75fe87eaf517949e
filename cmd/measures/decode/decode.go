// Package decodecmder provides the decode command for converting measurement
// sequences offline, without a running server.
package decodecmder

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/pkg/cliui"
	"github.com/papercomputeco/measures/pkg/decoder"
)

const decodeLongDesc string = `Decode one or more measurement sequences.

Each argument is validated and decoded exactly as GET /convert-measurements
would. Nothing is recorded in the audit log or the secure history.

Examples:
  measures decode abbcc
  measures decode dz_a_aazzaaa a_ --json`

const decodeShortDesc string = "Decode measurement sequences locally"

type decodeCommander struct {
	json bool
	out  io.Writer
}

// result is the JSON form of one decoded argument.
type result struct {
	Sequence  string `json:"sequence"`
	Processed []int  `json:"processed,omitempty"`
	Error     string `json:"error,omitempty"`
}

func NewDecodeCmd() *cobra.Command {
	cmder := &decodeCommander{}

	cmd := &cobra.Command{
		Use:   "decode <sequence>...",
		Short: decodeShortDesc,
		Long:  decodeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run(args)
		},
	}

	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print one JSON object per sequence")

	return cmd
}

func (c *decodeCommander) run(args []string) error {
	failed := 0
	for _, arg := range args {
		res := decode(arg)
		if res.Error != "" {
			failed++
		}

		if c.json {
			data, err := json.Marshal(res)
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Fprintln(c.out, string(data))
			continue
		}

		c.print(res)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sequences could not be decoded", failed, len(args))
	}
	return nil
}

func (c *decodeCommander) print(res result) {
	cliui.Fprintf(c.out, "  %s  %s\n", cliui.KeyStyle.Render("Input: "), cliui.ValueStyle.Render(res.Sequence))
	if res.Error != "" {
		cliui.Fprintf(c.out, "  %s  %s %s\n\n", cliui.KeyStyle.Render("Output:"), cliui.FailMark, res.Error)
		return
	}
	cliui.Fprintf(c.out, "  %s  %s\n\n", cliui.KeyStyle.Render("Output:"), cliui.ValueStyle.Render(formatValues(res.Processed)))
}

func decode(s string) result {
	if err := decoder.Validate(s); err != nil {
		return result{Sequence: s, Error: err.Error()}
	}

	processed, err := decoder.Decode(s)
	if err != nil {
		return result{Sequence: s, Error: err.Error()}
	}

	return result{Sequence: s, Processed: processed}
}

func formatValues(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
