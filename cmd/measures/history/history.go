// Package historycmder provides the history command for inspecting the
// encrypted secure history and the audit log offline.
package historycmder

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/measures/pkg/cliui"
)

const historyLongDesc string = `Inspect stored conversions.

  measures history show     Decrypt and print the secure history file
  measures history audit    Print the audit log from the configured storage

Both commands read the files in the .measures/ directory and should not be
pointed at the files of a running server.`

const historyShortDesc string = "Inspect stored conversions"

// maxSequenceWidth bounds the sequence column in rendered tables.
const maxSequenceWidth = 48

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
	}

	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newAuditCmd())

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}

// writeTable renders a markdown table through glamour on a terminal. Plain
// writers, and failed renders, get the raw markdown.
func writeTable(w io.Writer, title string, header []string, rows [][]string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", title)

	if len(rows) == 0 {
		b.WriteString("_No entries._\n")
	} else {
		fmt.Fprintf(&b, "| %s |\n", strings.Join(header, " | "))
		fmt.Fprintf(&b, "|%s\n", strings.Repeat(" --- |", len(header)))
		for _, row := range rows {
			fmt.Fprintf(&b, "| %s |\n", strings.Join(row, " | "))
		}
	}

	if cliui.Plain(w) {
		_, err := io.WriteString(w, b.String())
		return err
	}

	rendered, err := cliui.RenderMarkdown(b.String())
	if err != nil {
		rendered = b.String()
	}

	_, err = io.WriteString(w, rendered)
	return err
}

// sequenceCell renders a raw input as inline code, cut to maxSequenceWidth.
// The empty input, which is valid, gets a placeholder.
func sequenceCell(s string) string {
	if s == "" {
		return "_(empty)_"
	}
	if len(s) > maxSequenceWidth {
		s = s[:maxSequenceWidth] + "..."
	}
	return "`" + s + "`"
}

func formatValues(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
