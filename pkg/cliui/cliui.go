// Package cliui holds the terminal helpers shared by measures commands:
// step spinners, styled key/value rows and glamour-rendered tables. Output
// to pipes and files is always plain text.
package cliui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
)

// tableWidth is the word-wrap width for rendered markdown.
const tableWidth = 100

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step runs fn and reports it on w as "✓ msg (elapsed)" or "✗ msg (elapsed)".
// Terminals also get a spinner while fn runs; plain writers get the result
// line only.
func Step(w io.Writer, msg string, fn func() error) error {
	var stop func()
	if !Plain(w) {
		stop = spin(w, msg)
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	prefix := ""
	if stop != nil {
		stop()
		prefix = "\r"
	}

	Fprintf(w, "%s  %s %s %s\n",
		prefix,
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	return err
}

// spin animates a spinner before msg until the returned stop func is
// called. stop waits for the last frame to be written.
func spin(w io.Writer, msg string) func() {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			fmt.Fprintf(w, "\r  %s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), msg)

			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

// Mark returns FailMark for a non-nil err and SuccessMark otherwise.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration renders d as milliseconds below one second ("12ms") and as
// seconds with one decimal above ("3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders content with glamour's auto style. On failure the
// unrendered content is returned along with the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(tableWidth),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}
