// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation folds connection events into a chat transcript.
package conversation

import (
	"github.com/jeranaias/rigchat/internal/transport"
)

// =============================================================================
// EVENTS
// =============================================================================

// Event is an input to Reduce.
type Event interface {
	eventName() string
}

// Submit is the user asking to send Text.
type Submit struct {
	Text string
}

// Chunk is one piece of assistant text from the connection.
type Chunk struct {
	Text string
}

// Opened reports that the connection is up.
type Opened struct{}

// Closed reports that the connection is gone. Err is nil for a clean close.
type Closed struct {
	Err error
}

// EndOfTurn reports that the assistant finished its reply.
type EndOfTurn struct{}

func (Submit) eventName() string    { return "submit" }
func (Chunk) eventName() string     { return "chunk" }
func (Opened) eventName() string    { return "opened" }
func (Closed) eventName() string    { return "closed" }
func (EndOfTurn) eventName() string { return "end_of_turn" }

// EventName returns a short name for logging.
func EventName(ev Event) string {
	if ev == nil {
		return "nil"
	}
	return ev.eventName()
}

// FromTransport converts a transport event. It returns nil for unknown kinds.
func FromTransport(ev transport.Event) Event {
	switch ev.Kind {
	case transport.EventOpened:
		return Opened{}
	case transport.EventChunk:
		return Chunk{Text: ev.Text}
	case transport.EventEndOfTurn:
		return EndOfTurn{}
	case transport.EventClosed:
		return Closed{Err: ev.Err}
	default:
		return nil
	}
}
