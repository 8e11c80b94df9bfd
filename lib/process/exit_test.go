// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain", errors.New("boom"), 1},
		{"usage", Usagef("unexpected argument: %s", "extra"), 2},
		{"wrapped usage", fmt.Errorf("parsing flags: %w", Usagef("bad")), 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := ExitCode(test.err); got != test.want {
				t.Errorf("ExitCode(%v) = %d, want %d", test.err, got, test.want)
			}
		})
	}
}

func TestUsagefMessage(t *testing.T) {
	if got := Usagef("unexpected argument: %s", "extra").Error(); got != "unexpected argument: extra" {
		t.Errorf("Error() = %q", got)
	}
}
