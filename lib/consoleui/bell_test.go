// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package consoleui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/supportdesk/lib/ticketsync"
)

var _ ticketsync.Alerter = (*Bell)(nil)

func TestBellSilentWithoutTerminal(t *testing.T) {
	file, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer file.Close()

	bell := NewBell(file)
	if bell.Enabled() {
		t.Fatal("bell enabled on a regular file")
	}
	bell.Alert(ticketsync.Alert{TicketID: "tkt-1"})
	info, err := file.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("bell wrote %d bytes to a non-terminal", info.Size())
	}
}

func TestBellRings(t *testing.T) {
	var output bytes.Buffer
	bell := &Bell{output: &output, enabled: true}
	if !bell.Enabled() {
		t.Fatal("Enabled = false, want true")
	}
	bell.Alert(ticketsync.Alert{TicketID: "tkt-1"})
	bell.Alert(ticketsync.Alert{TicketID: "tkt-2"})
	if output.String() != "\a\a" {
		t.Fatalf("output = %q, want two BEL bytes", output.String())
	}
}
