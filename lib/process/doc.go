// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the support
// desk binaries. [Fatal] reports an error from run() to stderr before
// or after the structured logger exists, and exits with the status
// chosen by [ExitCode]. [UsageError] marks command-line mistakes.
package process
