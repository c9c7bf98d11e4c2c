// Package server holds the HTTP server configuration.
//
// While the start command wires and runs the Fiber application, this package
// defines the configuration structure (port, API key, static front-end directory)
// and the list of public paths that bypass API key authentication.
package server
