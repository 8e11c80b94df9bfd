// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/bureau-foundation/supportdesk/lib/ticketsync"
)

// Bell is a ticketsync.Alerter that rings the terminal bell. It is
// silent when its output is not a terminal.
type Bell struct {
	mu      sync.Mutex
	output  io.Writer
	enabled bool
}

// NewBell returns a bell writing to file, enabled only when file is a
// terminal. The console passes stderr so the BEL byte never
// interleaves with the renderer's stdout frames.
func NewBell(file *os.File) *Bell {
	return &Bell{
		output:  file,
		enabled: term.IsTerminal(int(file.Fd())),
	}
}

// Alert writes BEL.
func (bell *Bell) Alert(ticketsync.Alert) {
	bell.mu.Lock()
	defer bell.mu.Unlock()
	if !bell.enabled {
		return
	}
	_, _ = bell.output.Write([]byte{'\a'})
}

// Enabled reports whether Alert produces sound.
func (bell *Bell) Enabled() bool {
	return bell.enabled
}
