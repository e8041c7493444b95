package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-sqlite sqlite database file path
//	-c/-config json file path with configs
//	-realm digest authentication realm
//	-nonce-lifetime digest nonce lifetime (e.g., "60s")
//	-opaque-key HMAC key deriving the digest opaque value
//	-token-sign-key bearer token signing key
//	-token-issuer bearer token issuer name
//	-token-duration bearer token duration (e.g., "1h", "30m")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-sync-worker-cap concurrent entry reads during a sync query
//	-sync-limit default sync page size
//	-tombstone-retention how long deletion tombstones are kept
//	-purge-interval how often the tombstone purge worker runs
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var sqlitePath string
	var jsonConfigPath string
	var realm string
	var opaqueKey string
	var nonceLifetime time.Duration
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var syncWorkerCap int
	var syncLimit int
	var tombstoneRetention time.Duration
	var purgeInterval time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&realm, "realm", "", "Digest authentication realm")
	flag.DurationVar(&nonceLifetime, "nonce-lifetime", 0, "Digest nonce lifetime (e.g., 60s)")
	flag.StringVar(&opaqueKey, "opaque-key", "", "HMAC key for the digest opaque value")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.IntVar(&syncWorkerCap, "sync-worker-cap", 0, "Concurrent entry reads during a sync query")
	flag.IntVar(&syncLimit, "sync-limit", 0, "Default sync page size")
	flag.DurationVar(&tombstoneRetention, "tombstone-retention", 0, "Tombstone retention window (e.g., 720h)")
	flag.DurationVar(&purgeInterval, "purge-interval", 0, "Tombstone purge interval (e.g., 1h)")

	flag.Parse()

	return &StructuredConfig{
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Auth: Auth{
			Realm:         realm,
			NonceLifetime: nonceLifetime,
			OpaqueKey:     opaqueKey,
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
		},
		Storage: Storage{
			DB:     DB{DSN: databaseDSN},
			SQLite: SQLite{Path: sqlitePath},
		},
		Sync: Sync{
			WorkerCap:          syncWorkerCap,
			DefaultLimit:       syncLimit,
			TombstoneRetention: tombstoneRetention,
			PurgeInterval:      purgeInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns the "host:port" rendering of the address, or the empty
// string when the address was never set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

// Set parses a "[host]:[port]" flag value into the receiver.
// It implements the flag.Value interface.
func (a *NetAddress) Set(value string) error {
	host, portStr, found := strings.Cut(value, ":")
	if !found {
		return errors.New("need address in a form host:port")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}

	a.Host = host
	a.Port = port
	return nil
}
