// Package api provides the HTTP API server for capturing, retrieving,
// searching, and bridging context records.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string
}
