// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "errors"

var (
	ErrInvalidServerConfigs  = errors.New("invalid server configs: HTTP address is required")
	ErrInvalidStorageConfigs = errors.New("invalid storage configs: either a database DSN or a sqlite path is required")
	ErrInvalidSyncConfigs    = errors.New("invalid sync configs: worker cap and default limit must be non-negative")
)
