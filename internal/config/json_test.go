package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_FullConfig(t *testing.T) {
	path := writeTempJSON(t, `{
		"server": {"http_address": "0.0.0.0:9443", "request_timeout": "45s"},
		"auth": {
			"realm": "webdav",
			"nonce_lifetime": "2m",
			"opaque_key": "opq",
			"token_sign_key": "sign",
			"token_issuer": "davsync",
			"token_duration": "12h"
		},
		"storage": {"db": {"dsn": "postgres://localhost/dav"}, "sqlite": {"path": "dav.db"}},
		"notify": {"write_timeout": "3s"},
		"sync": {
			"worker_cap": 4,
			"default_limit": 50,
			"tombstone_retention": "168h",
			"purge_interval": "15m"
		}
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9443", cfg.Server.HTTPAddress)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "webdav", cfg.Auth.Realm)
	assert.Equal(t, 2*time.Minute, cfg.Auth.NonceLifetime)
	assert.Equal(t, "postgres://localhost/dav", cfg.Storage.DB.DSN)
	assert.Equal(t, "dav.db", cfg.Storage.SQLite.Path)
	assert.Equal(t, 3*time.Second, cfg.Notify.WriteTimeout)
	assert.Equal(t, 4, cfg.Sync.WorkerCap)
	assert.Equal(t, 50, cfg.Sync.DefaultLimit)
	assert.Equal(t, 168*time.Hour, cfg.Sync.TombstoneRetention)
	assert.Equal(t, 15*time.Minute, cfg.Sync.PurgeInterval)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON("/no/such/file.json")
	require.Error(t, err)
}

func TestParseJSON_MalformedJSON(t *testing.T) {
	path := writeTempJSON(t, `{"server": `)
	_, err := parseJSON(path)
	require.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string duration", input: `"1h30m"`, want: 90 * time.Minute},
		{name: "numeric nanoseconds", input: `1000000000`, want: time.Second},
		{name: "garbage string", input: `"soon"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalJSON([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}

func TestStructuredConfig_ApplyDefaults(t *testing.T) {
	cfg := &StructuredConfig{}
	cfg.applyDefaults()

	assert.Equal(t, "go-dav-sync", cfg.Auth.Realm)
	assert.Equal(t, 60*time.Second, cfg.Auth.NonceLifetime)
	assert.Equal(t, 10*time.Second, cfg.Notify.WriteTimeout)
	assert.Equal(t, 8, cfg.Sync.WorkerCap)
	assert.Equal(t, 720*time.Hour, cfg.Sync.TombstoneRetention)
	assert.Equal(t, time.Hour, cfg.Sync.PurgeInterval)
}

func TestStructuredConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StructuredConfig
		wantErr error
	}{
		{
			name: "valid postgres config",
			cfg: StructuredConfig{
				Server:  Server{HTTPAddress: ":8080"},
				Storage: Storage{DB: DB{DSN: "postgres://localhost/dav"}},
			},
		},
		{
			name: "valid sqlite config",
			cfg: StructuredConfig{
				Server:  Server{HTTPAddress: ":8080"},
				Storage: Storage{SQLite: SQLite{Path: "dav.db"}},
			},
		},
		{
			name:    "missing address",
			cfg:     StructuredConfig{Storage: Storage{SQLite: SQLite{Path: "dav.db"}}},
			wantErr: ErrInvalidServerConfigs,
		},
		{
			name:    "missing storage",
			cfg:     StructuredConfig{Server: Server{HTTPAddress: ":8080"}},
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name: "negative worker cap",
			cfg: StructuredConfig{
				Server:  Server{HTTPAddress: ":8080"},
				Storage: Storage{SQLite: SQLite{Path: "dav.db"}},
				Sync:    Sync{WorkerCap: -1},
			},
			wantErr: ErrInvalidSyncConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
