package logger

import (
	"io"
	"log/slog"
)

// Option tunes the logger built by New.
type Option func(*config)

// WithDebug lowers the level to Debug. False keeps Info.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithPretty selects the colorized charmbracelet/log handler used on the
// serve console. It wins over WithJSON.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON selects slog's JSON handler, the format of measures.log.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithWriter sends output to w instead of os.Stdout.
func WithWriter(w io.Writer) Option {
	return WithWriters(w)
}

// WithWriters fans output out to every w.
func WithWriters(w ...io.Writer) Option {
	return func(c *config) { c.writers = w }
}

// WithSource adds the caller's file:line to each record.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}

// WithAttrs attaches attrs to every record, e.g. the service name and
// build version in the JSON log file.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}
