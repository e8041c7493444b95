// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errNoServersAreCreated is returned by NewServer when the handler set
// contains no transport to serve.
var errNoServersAreCreated = errors.New("no servers are created")
