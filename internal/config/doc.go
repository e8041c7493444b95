// Package config loads, merges, and validates application configuration.
//
// Server configuration is assembled from environment variables, command-line
// flags, and an optional JSON file; later sources override earlier non-zero
// fields. Entry points are [GetStructuredConfig] for the server and
// [GetClientConfig] for the sync client.
package config
