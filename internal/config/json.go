package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations, so operators can keep a readable config file.
type StructuredJSONConfig struct {
	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Auth struct {
		Realm         string   `json:"realm"`
		NonceLifetime Duration `json:"nonce_lifetime"`
		OpaqueKey     string   `json:"opaque_key"`
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
	} `json:"auth,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		SQLite struct {
			Path string `json:"path"`
		} `json:"sqlite,omitempty"`
	} `json:"storage,omitempty"`

	Notify struct {
		WriteTimeout Duration `json:"write_timeout"`
	} `json:"notify,omitempty"`

	Sync struct {
		WorkerCap          int      `json:"worker_cap"`
		DefaultLimit       int      `json:"default_limit"`
		TombstoneRetention Duration `json:"tombstone_retention"`
		PurgeInterval      Duration `json:"purge_interval"`
	} `json:"sync,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Auth: Auth{
			Realm:         jsonCfg.Auth.Realm,
			NonceLifetime: time.Duration(jsonCfg.Auth.NonceLifetime),
			OpaqueKey:     jsonCfg.Auth.OpaqueKey,
			TokenSignKey:  jsonCfg.Auth.TokenSignKey,
			TokenIssuer:   jsonCfg.Auth.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.Auth.TokenDuration),
		},
		Storage: Storage{
			DB:     DB{DSN: jsonCfg.Storage.DB.DSN},
			SQLite: SQLite{Path: jsonCfg.Storage.SQLite.Path},
		},
		Notify: Notify{
			WriteTimeout: time.Duration(jsonCfg.Notify.WriteTimeout),
		},
		Sync: Sync{
			WorkerCap:          jsonCfg.Sync.WorkerCap,
			DefaultLimit:       jsonCfg.Sync.DefaultLimit,
			TombstoneRetention: time.Duration(jsonCfg.Sync.TombstoneRetention),
			PurgeInterval:      time.Duration(jsonCfg.Sync.PurgeInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
