// Package server wires and runs the application's transport server.
//
// It provides orchestration for the HTTP server lifecycle, including
// startup, signal handling, and graceful shutdown of the API together with
// the notification publisher's open subscriber connections.
package server
