// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticketbackend

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/supportdesk/lib/schema/support"
)

// fuzzySearch matches tickets against a free-text query with fzf's
// fuzzy algorithm. Every whitespace-separated term must match at least
// one of the ticket's subject, description, or message bodies.
type fuzzySearch struct {
	terms [][]rune
	slab  *util.Slab
}

// Slab sizes match fzf's defaults for interactive matching.
const (
	slab16Size = 100 * 1024
	slab32Size = 2048
)

func newFuzzySearch(query string) *fuzzySearch {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([][]rune, len(fields))
	for i, field := range fields {
		terms[i] = []rune(field)
	}
	return &fuzzySearch{
		terms: terms,
		slab:  util.MakeSlab(slab16Size, slab32Size),
	}
}

func (search *fuzzySearch) matches(ticket *support.Ticket) bool {
	for _, term := range search.terms {
		if !search.anyFieldMatches(ticket, term) {
			return false
		}
	}
	return true
}

func (search *fuzzySearch) anyFieldMatches(ticket *support.Ticket, term []rune) bool {
	if search.fuzzyMatch(ticket.Subject, term) || search.fuzzyMatch(ticket.Description, term) {
		return true
	}
	for i := range ticket.Messages {
		if search.fuzzyMatch(ticket.Messages[i].Body, term) {
			return true
		}
	}
	return false
}

// fuzzyMatch reports whether every rune of pattern appears in text in
// order, ignoring case. pattern must already be lowercase.
func (search *fuzzySearch) fuzzyMatch(text string, pattern []rune) bool {
	if text == "" {
		return false
	}
	chars := util.ToChars([]byte(text))
	result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, search.slab)
	return result.Start >= 0
}
