// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/transport"
)

// =============================================================================
// TRANSPORT MESSAGES
// =============================================================================

// TransportEventMsg carries one event from the session into Update.
type TransportEventMsg struct {
	Event transport.Event
}

// EventsDoneMsg is sent once the session's event channel is closed.
type EventsDoneMsg struct{}

// ConnectResultMsg reports the outcome of the connection attempt.
// The matching opened/closed event arrives separately on the event channel.
type ConnectResultMsg struct {
	Err error
}

// =============================================================================
// COMMANDS
// =============================================================================

// waitForEvent reads exactly one event. Update re-arms it after handling
// each event, so events are reduced strictly one at a time.
func waitForEvent(events <-chan transport.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return EventsDoneMsg{}
		}
		return TransportEventMsg{Event: ev}
	}
}
