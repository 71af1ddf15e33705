// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is an ordered, append-only sequence of turns.
//
// The zero value is an empty transcript ready to use. Append and
// ReplaceLast copy the backing slice, so earlier snapshots stay valid
// after later transitions.
type Transcript struct {
	turns []Turn
}

// NewTranscript creates a transcript from the given turns. The slice is copied.
func NewTranscript(turns ...Turn) Transcript {
	if len(turns) == 0 {
		return Transcript{}
	}
	cp := make([]Turn, len(turns))
	copy(cp, turns)
	return Transcript{turns: cp}
}

// Len returns the number of turns.
func (tr Transcript) Len() int {
	return len(tr.turns)
}

// IsEmpty returns true if there are no turns.
func (tr Transcript) IsEmpty() bool {
	return len(tr.turns) == 0
}

// At returns the turn at index i. It panics if i is out of range.
func (tr Transcript) At(i int) Turn {
	return tr.turns[i]
}

// Last returns the most recent turn, or false if the transcript is empty.
func (tr Transcript) Last() (Turn, bool) {
	if len(tr.turns) == 0 {
		return Turn{}, false
	}
	return tr.turns[len(tr.turns)-1], true
}

// Turns returns a copy of all turns in order.
func (tr Transcript) Turns() []Turn {
	cp := make([]Turn, len(tr.turns))
	copy(cp, tr.turns)
	return cp
}

// Append returns a new transcript with turn added at the end.
func (tr Transcript) Append(turn Turn) Transcript {
	next := make([]Turn, len(tr.turns), len(tr.turns)+1)
	copy(next, tr.turns)
	return Transcript{turns: append(next, turn)}
}

// ReplaceLast returns a new transcript whose last turn is turn.
// On an empty transcript it behaves like Append.
func (tr Transcript) ReplaceLast(turn Turn) Transcript {
	if len(tr.turns) == 0 {
		return tr.Append(turn)
	}
	next := make([]Turn, len(tr.turns))
	copy(next, tr.turns)
	next[len(next)-1] = turn
	return Transcript{turns: next}
}

// CountByRole returns how many turns were authored by role.
func (tr Transcript) CountByRole(role Role) int {
	n := 0
	for _, t := range tr.turns {
		if t.Role == role {
			n++
		}
	}
	return n
}

// HasAdjacentAssistantTurns reports whether two assistant turns sit next to
// each other. Chunk folding never produces this.
func (tr Transcript) HasAdjacentAssistantTurns() bool {
	for i := 1; i < len(tr.turns); i++ {
		if tr.turns[i].IsAssistant() && tr.turns[i-1].IsAssistant() {
			return true
		}
	}
	return false
}
