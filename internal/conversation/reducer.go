// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation folds connection events into a chat transcript.
package conversation

import (
	"strings"

	"github.com/jeranaias/rigchat/internal/model"
)

// =============================================================================
// EFFECTS
// =============================================================================

// EffectKind identifies what the caller must do after a transition.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectSend
	EffectRejected
)

// RejectReason explains why a submit was ignored.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectEmpty
	RejectDisconnected
	RejectAwaiting
)

// String returns the reason name.
func (r RejectReason) String() string {
	switch r {
	case RejectEmpty:
		return "empty"
	case RejectDisconnected:
		return "disconnected"
	case RejectAwaiting:
		return "awaiting_reply"
	default:
		return "none"
	}
}

// Effect is the side effect requested by a transition.
type Effect struct {
	Kind EffectKind

	// Text is the trimmed message to send for EffectSend.
	Text string

	// Reason is set for EffectRejected.
	Reason RejectReason
}

// =============================================================================
// REDUCER
// =============================================================================

// Reduce applies ev to s and returns the next state and the requested effect.
// It is pure: s is not modified and no I/O happens.
//
// Whether a chunk starts a new assistant turn or extends the last one is
// decided by AwaitingReply alone.
func Reduce(s State, ev Event) (State, Effect) {
	switch e := ev.(type) {
	case Submit:
		return reduceSubmit(s, e)
	case Chunk:
		return reduceChunk(s, e), Effect{}
	case Opened:
		s.Connection = Connected
		s.LastError = nil
		return s, Effect{}
	case Closed:
		return reduceClosed(s, e), Effect{}
	case EndOfTurn:
		return reduceEndOfTurn(s), Effect{}
	default:
		return s, Effect{}
	}
}

func reduceSubmit(s State, e Submit) (State, Effect) {
	text := strings.TrimSpace(e.Text)
	switch {
	case text == "":
		return s, rejected(RejectEmpty)
	case s.Connection != Connected:
		return s, rejected(RejectDisconnected)
	case s.AwaitingReply:
		return s, rejected(RejectAwaiting)
	}

	s.Transcript = s.Transcript.Append(model.NewUserTurn(text))
	s.AwaitingReply = true
	return s, Effect{Kind: EffectSend, Text: text}
}

func reduceChunk(s State, e Chunk) State {
	if s.AwaitingReply {
		s.Transcript = s.Transcript.Append(model.NewAssistantTurn(e.Text))
		s.AwaitingReply = false
		return s
	}

	last, ok := s.Transcript.Last()
	if ok && last.IsAssistant() {
		s.Transcript = s.Transcript.ReplaceLast(last.WithAppended(e.Text))
		return s
	}

	// Unsolicited reply with nothing to extend.
	s.Transcript = s.Transcript.Append(model.NewAssistantTurn(e.Text))
	return s
}

// reduceClosed keeps AwaitingReply and any partial content as they are.
func reduceClosed(s State, e Closed) State {
	s.Connection = Disconnected
	s.LastError = e.Err

	if last, ok := s.Transcript.Last(); ok && last.IsAssistant() && last.Streaming {
		s.Transcript = s.Transcript.ReplaceLast(last.MarkInterrupted())
	}
	return s
}

func reduceEndOfTurn(s State) State {
	s.AwaitingReply = false
	if last, ok := s.Transcript.Last(); ok && last.IsAssistant() && last.Streaming {
		s.Transcript = s.Transcript.ReplaceLast(last.Finalized())
	}
	return s
}

func rejected(reason RejectReason) Effect {
	return Effect{Kind: EffectRejected, Reason: reason}
}
