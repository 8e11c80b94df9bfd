// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketsync

import (
	"testing"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

func TestFingerprintTicket(t *testing.T) {
	ticket := ticketWithUserMessages("a", 2)
	ticket.ReadReceipts = support.ReadReceipts{support.RoleAdmin: at(1), support.RoleUser: at(2)}

	clone := ticket.Clone()
	if FingerprintTicket(&ticket) != FingerprintTicket(&clone) {
		t.Fatal("equal tickets have different fingerprints")
	}

	clone.Messages[1].Body = "edited"
	if FingerprintTicket(&ticket) == FingerprintTicket(&clone) {
		t.Fatal("message edit did not change the fingerprint")
	}

	clone = ticket.Clone()
	clone.ReadReceipts[support.RoleAdmin] = at(5)
	if FingerprintTicket(&ticket) == FingerprintTicket(&clone) {
		t.Fatal("receipt change did not change the fingerprint")
	}

	if got := FingerprintTicket(&ticket).String(); len(got) != 12 {
		t.Errorf("String() = %q, want 12 hex characters", got)
	}
}
