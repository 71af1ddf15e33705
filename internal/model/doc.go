// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
//
// # Key Types
//
//   - Role: Turn author enumeration (user, assistant)
//   - Turn: One message in the transcript
//   - Transcript: Ordered, append-only, immutable sequence of turns
//
// A Transcript is a value. Every mutating operation returns a new
// Transcript and leaves the receiver untouched, so a snapshot handed to
// the renderer can never change underneath it.
//
// # Usage
//
//	var tr model.Transcript
//	tr = tr.Append(model.NewUserTurn("Hi"))
//	tr = tr.Append(model.NewAssistantTurn("He"))
//	last, _ := tr.Last()
//	tr = tr.ReplaceLast(last.WithAppended("llo!"))
package model
