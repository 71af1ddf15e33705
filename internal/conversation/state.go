// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation folds connection events into a chat transcript.
package conversation

import (
	"github.com/jeranaias/rigchat/internal/model"
)

// ConnState mirrors the transport connection as seen through events.
type ConnState int

const (
	Disconnected ConnState = iota
	Connected
)

// String returns the state name.
func (c ConnState) String() string {
	if c == Connected {
		return "connected"
	}
	return "disconnected"
}

// State is everything the view needs to render a conversation.
//
// States are values. Reduce never mutates its input, so a State handed to a
// renderer stays valid while later events are applied.
type State struct {
	Transcript    model.Transcript
	AwaitingReply bool
	Connection    ConnState

	// LastError is the error carried by the most recent Closed event.
	LastError error
}

// Initial returns the state before any event: empty, disconnected, idle.
func Initial() State {
	return State{}
}

// InputEnabled reports whether the user may submit.
func (s State) InputEnabled() bool {
	return s.Connection == Connected && !s.AwaitingReply
}

// ShowTyping reports whether the typing indicator should be visible.
func (s State) ShowTyping() bool {
	return s.AwaitingReply
}
