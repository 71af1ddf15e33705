// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript.
package model

import (
	"time"

	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is a single message in the transcript.
//
// Turn is a plain value. Its role never changes after creation; assistant
// content only grows, through WithAppended.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Streaming is true while an assistant turn may still receive chunks.
	Streaming bool `json:"-"`

	// Interrupted marks an assistant turn whose connection dropped mid-reply.
	Interrupted bool `json:"interrupted,omitempty"`
}

// NewUserTurn creates a user turn.
func NewUserTurn(content string) Turn {
	return Turn{
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantTurn creates a streaming assistant turn seeded with the first chunk.
func NewAssistantTurn(firstChunk string) Turn {
	return Turn{
		Role:      RoleAssistant,
		Content:   firstChunk,
		CreatedAt: time.Now(),
		Streaming: true,
	}
}

// =============================================================================
// TURN METHODS
// =============================================================================

// WithAppended returns a copy of the turn with text appended to its content.
func (t Turn) WithAppended(text string) Turn {
	t.Content += text
	return t
}

// Finalized returns a copy of the turn with streaming completed.
func (t Turn) Finalized() Turn {
	t.Streaming = false
	return t
}

// MarkInterrupted returns a copy of the turn flagged as cut off by a
// connection drop. Only a streaming turn is affected.
func (t Turn) MarkInterrupted() Turn {
	if !t.Streaming {
		return t
	}
	t.Streaming = false
	t.Interrupted = true
	return t
}

// IsUser reports whether the turn was authored by the user.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

// IsAssistant reports whether the turn was authored by the assistant.
func (t Turn) IsAssistant() bool {
	return t.Role == RoleAssistant
}

// IsEmpty returns true if the turn has no content.
func (t Turn) IsEmpty() bool {
	return len(t.Content) == 0
}

// Preview returns a truncated preview of the turn content.
func (t Turn) Preview(maxLen int) string {
	return util.TruncateRunes(t.Content, maxLen)
}
