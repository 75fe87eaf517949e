package cliui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Plain reports whether w should receive unstyled text: it is not a
// terminal, or the terminal has no color support (e.g. NO_COLOR is set).
func Plain(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return true
	}
	return termenv.NewOutput(f).EnvColorProfile() == termenv.Ascii
}

// Fprintf formats like fmt.Fprintf and strips lipgloss styling when w is Plain.
func Fprintf(w io.Writer, format string, args ...any) {
	s := fmt.Sprintf(format, args...)
	if Plain(w) {
		s = ansi.Strip(s)
	}
	_, _ = io.WriteString(w, s)
}
