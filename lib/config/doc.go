// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the support
// desk binaries.
//
// Configuration is loaded from a single file specified by either the
// SUPPORTDESK_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no automatic file search.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production lowers the default log
// level to info.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${SUPPORTDESK_ROOT}, ${SUPPORTDESK_RUN}, and
// ${VAR:-default} patterns are expanded.
//
// Durations are stored as strings and parsed by [ConsoleConfig.Timings].
//
// This package depends on no other support desk packages.
package config
