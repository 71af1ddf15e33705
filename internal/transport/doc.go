// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the single WebSocket connection to the assistant.
//
// A Session wraps one gorilla/websocket connection. It knows nothing about
// turns or transcripts: it dials once, sends text frames, and reports what
// happens on a single ordered event channel.
//
// # Events
//
//   - EventOpened: the connection is up
//   - EventChunk: one text frame from the peer
//   - EventEndOfTurn: the peer sent the end-of-turn marker frame
//   - EventClosed: the connection is gone (Err is nil for a clean close)
//
// EventClosed is emitted at most once and the channel is closed right after.
//
// # Usage
//
//	opts := transport.DefaultOptions()
//	opts.URL = "ws://localhost:8000/ws"
//	opts.Logger = logger
//
//	s := transport.New(opts)
//	defer s.Close()
//
//	if err := s.Connect(ctx); err != nil {
//	    // EventClosed carrying the same error is already queued
//	}
//
//	if err := s.Send("Hi"); transport.IsNotConnected(err) {
//	    ...
//	}
package transport
