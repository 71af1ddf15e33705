// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"testing"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Assistant"},
		{Role("narrator"), "narrator"},
	}

	for _, tc := range tests {
		if got := tc.role.DisplayName(); got != tc.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tc.role, got, tc.want)
		}
	}
}

// =============================================================================
// TURN TESTS
// =============================================================================

func TestNewAssistantTurn_IsStreaming(t *testing.T) {
	turn := NewAssistantTurn("He")

	if !turn.IsAssistant() {
		t.Errorf("Role = %q, want assistant", turn.Role)
	}
	if !turn.Streaming {
		t.Error("new assistant turn should be streaming")
	}
	if turn.Content != "He" {
		t.Errorf("Content = %q, want %q", turn.Content, "He")
	}
}

func TestTurn_WithAppendedDoesNotMutateReceiver(t *testing.T) {
	orig := NewAssistantTurn("Hel")
	next := orig.WithAppended("lo")

	if orig.Content != "Hel" {
		t.Errorf("receiver mutated: Content = %q", orig.Content)
	}
	if next.Content != "Hello" {
		t.Errorf("Content = %q, want %q", next.Content, "Hello")
	}
}

func TestTurn_MarkInterrupted(t *testing.T) {
	streaming := NewAssistantTurn("partial").MarkInterrupted()
	if !streaming.Interrupted || streaming.Streaming {
		t.Errorf("streaming turn: Interrupted=%v Streaming=%v, want true/false", streaming.Interrupted, streaming.Streaming)
	}

	done := NewAssistantTurn("full").Finalized().MarkInterrupted()
	if done.Interrupted {
		t.Error("finalized turn should not be marked interrupted")
	}
}

func TestTurn_Preview(t *testing.T) {
	turn := NewUserTurn("Hello, 世界! This is long")
	if got := turn.Preview(10); got != "Hello, ..." {
		t.Errorf("Preview(10) = %q", got)
	}
	if got := turn.Preview(100); got != turn.Content {
		t.Errorf("Preview(100) = %q, want full content", got)
	}
}

// =============================================================================
// TRANSCRIPT TESTS
// =============================================================================

func TestTranscript_ZeroValue(t *testing.T) {
	var tr Transcript

	if !tr.IsEmpty() || tr.Len() != 0 {
		t.Errorf("zero transcript Len = %d, want 0", tr.Len())
	}
	if _, ok := tr.Last(); ok {
		t.Error("Last() on empty transcript should return false")
	}
}

func TestTranscript_AppendIsCopyOnWrite(t *testing.T) {
	base := NewTranscript(NewUserTurn("Hi"))
	a := base.Append(NewAssistantTurn("A"))
	b := base.Append(NewAssistantTurn("B"))

	if base.Len() != 1 {
		t.Errorf("base Len = %d, want 1", base.Len())
	}
	if a.At(1).Content != "A" || b.At(1).Content != "B" {
		t.Errorf("siblings share storage: a=%q b=%q", a.At(1).Content, b.At(1).Content)
	}
}

func TestTranscript_ReplaceLastIsCopyOnWrite(t *testing.T) {
	snap := NewTranscript(NewUserTurn("Hi"), NewAssistantTurn("He"))
	last, _ := snap.Last()
	next := snap.ReplaceLast(last.WithAppended("llo!"))

	if got := snap.At(1).Content; got != "He" {
		t.Errorf("old snapshot changed: %q", got)
	}
	if got := next.At(1).Content; got != "Hello!" {
		t.Errorf("new snapshot = %q, want %q", got, "Hello!")
	}
	if next.Len() != snap.Len() {
		t.Errorf("ReplaceLast changed length: %d -> %d", snap.Len(), next.Len())
	}
}

func TestTranscript_ReplaceLastOnEmptyAppends(t *testing.T) {
	var tr Transcript
	tr = tr.ReplaceLast(NewAssistantTurn("x"))
	if tr.Len() != 1 {
		t.Errorf("Len = %d, want 1", tr.Len())
	}
}

func TestTranscript_TurnsReturnsCopy(t *testing.T) {
	tr := NewTranscript(NewUserTurn("Hi"))
	turns := tr.Turns()
	turns[0].Content = "changed"

	if tr.At(0).Content != "Hi" {
		t.Error("Turns() exposed internal storage")
	}
}

func TestTranscript_CountAndAdjacency(t *testing.T) {
	tr := NewTranscript(
		NewUserTurn("a"),
		NewAssistantTurn("b"),
		NewUserTurn("c"),
		NewAssistantTurn("d"),
	)
	if got := tr.CountByRole(RoleAssistant); got != 2 {
		t.Errorf("CountByRole(assistant) = %d, want 2", got)
	}
	if tr.HasAdjacentAssistantTurns() {
		t.Error("alternating transcript reported adjacent assistant turns")
	}

	bad := tr.Append(NewAssistantTurn("e"))
	if !bad.HasAdjacentAssistantTurns() {
		t.Error("adjacent assistant turns not detected")
	}
}
