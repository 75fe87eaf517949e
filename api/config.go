// Package api provides the HTTP API for converting measurement strings and
// reading back the conversion history.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// AllowOrigins is the CORS allow-list, comma separated. Empty allows all origins.
	AllowOrigins string
}
