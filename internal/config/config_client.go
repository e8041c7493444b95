package config

import (
	"errors"
	"time"
)

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the server endpoint the client talks to.
	// Env: CLIENT_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the default timeout for outbound client requests.
	// Env: CLIENT_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// ClientCredentials holds the account used for the Digest handshake.
type ClientCredentials struct {
	// Username is the account name sent in the Digest handshake.
	// Env: CLIENT_USERNAME
	Username string `env:"USERNAME"`

	// Password is the account password in recoverable form, as Digest
	// requires.
	// Env: CLIENT_PASSWORD
	Password string `env:"PASSWORD"`

	// ClientID identifies this client instance in the X-Client-Id header so
	// it can recognize the echo of its own mutations in the notification
	// stream.
	// Env: CLIENT_ID
	ClientID string `env:"ID"`
}

// ClientConfig is the top-level client configuration.
type ClientConfig struct {
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter `envPrefix:"CLIENT_"`
	// Credentials contains the Digest account of this client.
	Credentials ClientCredentials `envPrefix:"CLIENT_"`
}

// GetClientConfig loads and validates the client configuration from
// environment variables.
func GetClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.Adapter.HTTPAddress == "" {
		cfg.Adapter.HTTPAddress = "http://localhost:8080"
	}
	if cfg.Adapter.RequestTimeout <= 0 {
		cfg.Adapter.RequestTimeout = 15 * time.Second
	}

	return cfg, cfg.validate()
}

func (c *ClientConfig) validate() error {
	if c.Credentials.Username == "" || c.Credentials.Password == "" {
		return errors.New("invalid client configs: username and password are required")
	}
	return nil
}
