// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the single WebSocket connection to the assistant.
package transport

import "sync/atomic"

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies what happened on the connection.
type EventKind int

const (
	// EventOpened is emitted once when the connection is established.
	EventOpened EventKind = iota + 1

	// EventChunk carries one text frame from the peer.
	EventChunk

	// EventEndOfTurn is emitted for a frame equal to the end-of-turn marker.
	EventEndOfTurn

	// EventClosed is emitted at most once, when the connection is gone or
	// could not be established. Err is nil for a clean close.
	EventClosed
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventChunk:
		return "chunk"
	case EventEndOfTurn:
		return "end_of_turn"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is a notification from the Session.
type Event struct {
	Kind EventKind
	Text string
	Err  error
}

// =============================================================================
// STATE
// =============================================================================

// State is the connection state of a Session.
type State int32

const (
	StateDisconnected State = iota
	StateConnected
)

// String returns the state name.
func (s State) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "disconnected"
}

type atomicState struct {
	v atomic.Int32
}

func (a *atomicState) Load() State {
	return State(a.v.Load())
}

func (a *atomicState) Store(s State) {
	a.v.Store(int32(s))
}
