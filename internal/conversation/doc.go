// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation folds connection events into a chat transcript.
//
// Reduce is a pure transition function over State. It decides whether an
// incoming chunk opens a new assistant turn or extends the current one,
// using only the AwaitingReply flag: the first chunk after a submit opens a
// turn, every later chunk extends it.
//
// # Events
//
//   - Submit: user input, trimmed; rejected when empty, disconnected or awaiting
//   - Chunk: assistant text
//   - Opened, Closed: connection lifecycle
//   - EndOfTurn: the assistant finished its reply
//
// # Controller
//
// Controller holds the current State for a shell's event loop, performs the
// Send effect through a Sender and notifies an observer after each step.
//
//	c := conversation.NewController(session, logger, nil)
//	for ev := range session.Events() {
//	    c.Dispatch(conversation.FromTransport(ev))
//	}
package conversation
