// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view for rigchat.

The view composes a transport session with a conversation.Controller. Each
transport event is pumped into Update as a TransportEventMsg by a command
that reads exactly one event and is re-armed after the event is handled, so
the controller sees events strictly one at a time and in arrival order.

# Layout (view.go)

  - Header with the turn count
  - Viewport with the transcript, scrolled to the latest turn after every
    change, and a spinner while a reply is awaited
  - Textarea input, focused only while connected and not awaiting a reply
  - Status bar with connection state, endpoint and last error

# Keys (keys.go)

	Enter        send
	Alt+Enter    new line
	PgUp/PgDn    scroll
	Ctrl+Y       copy the last reply
	Esc, Ctrl+C  quit

# Usage

	m := chat.New(ctx, chat.Options{Theme: theme, Session: session, Logger: logger})
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
*/
package chat
