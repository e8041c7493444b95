// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// applyDefaults fills in defaults for every optional knob left at its zero
// value after merging all sources. Required values (addresses, DSNs, keys)
// are left alone and checked by validate.
func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Auth.Realm == "" {
		cfg.Auth.Realm = "go-dav-sync"
	}
	if cfg.Auth.NonceLifetime == 0 {
		cfg.Auth.NonceLifetime = 60 * time.Second
	}
	if cfg.Notify.WriteTimeout == 0 {
		cfg.Notify.WriteTimeout = 10 * time.Second
	}
	if cfg.Sync.WorkerCap == 0 {
		cfg.Sync.WorkerCap = 8
	}
	if cfg.Sync.TombstoneRetention == 0 {
		cfg.Sync.TombstoneRetention = 720 * time.Hour
	}
	if cfg.Sync.PurgeInterval == 0 {
		cfg.Sync.PurgeInterval = time.Hour
	}
}

// validate checks that the final merged [StructuredConfig] satisfies all
// invariants the server cannot start without.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Storage.DB.DSN == "" && cfg.Storage.SQLite.Path == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Sync.WorkerCap < 0 || cfg.Sync.DefaultLimit < 0 {
		return ErrInvalidSyncConfigs
	}

	return nil
}
