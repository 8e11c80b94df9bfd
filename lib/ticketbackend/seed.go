// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketbackend

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

// seedFile is the top-level shape of a seed file.
type seedFile struct {
	Tickets []support.Ticket `json:"tickets"`
}

// ParseSeed strips JSONC comments and trailing commas from data, then
// decodes {"tickets": [...]}. Tickets are validated by Desk.Load, not
// here.
func ParseSeed(data []byte) ([]support.Ticket, error) {
	var seed seedFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &seed); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	return seed.Tickets, nil
}

// LoadSeedFile reads and parses a seed file.
func LoadSeedFile(path string) ([]support.Ticket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	tickets, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tickets, nil
}
