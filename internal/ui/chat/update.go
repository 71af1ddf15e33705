// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rigchat/internal/conversation"
	"github.com/jeranaias/rigchat/internal/transport"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TransportEventMsg:
		return m.handleTransportEvent(msg)

	case EventsDoneMsg:
		m.log.Debug().Msg("event channel closed")
		return m, nil

	case ConnectResultMsg:
		m.connecting = false
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("connect failed")
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.State().ShowTyping() {
			m.updateViewport()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	// Layout: header + viewport (dynamic) + input area + status bar.
	// Must match the heights rendered by renderChat.
	const (
		headerHeight    = 1
		inputAreaHeight = 5 // separator + 3 input lines + hint
		statusBarHeight = 1
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = viewportHeight

	// InputContainer has Padding(0, 1)
	m.input.SetWidth(max(m.width-2, 10))

	if m.theme != nil {
		m.theme.SetSize(m.width, m.height)
	}

	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		if !m.input.Focused() {
			return m, nil
		}
		return m.submit()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.End):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keyMap.CopyLast):
		return m.copyLastReply()
	}

	// A blurred textarea ignores keystrokes, which gates input while
	// disconnected or awaiting a reply.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the controller, which rejects it while
// disconnected or awaiting. The input is cleared only when the message was
// sent.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.notice = ""
	eff, err := m.ctrl.Dispatch(conversation.Submit{Text: m.input.Value()})
	m.sendErr = err
	if eff.Kind == conversation.EffectSend {
		m.input.Reset()
	}

	cmd := m.syncInput()
	m.refresh()
	return m, cmd
}

func (m Model) handleTransportEvent(msg TransportEventMsg) (tea.Model, tea.Cmd) {
	ev := msg.Event
	if ev.Kind == transport.EventOpened || ev.Kind == transport.EventClosed {
		m.connecting = false
	}
	if ev.Kind == transport.EventClosed && ev.Err != nil {
		m.log.Warn().Err(ev.Err).Msg("connection closed with error")
	}

	m.ctrl.Dispatch(conversation.FromTransport(ev))

	cmd := m.syncInput()
	m.refresh()
	return m, tea.Batch(cmd, waitForEvent(m.session.Events()))
}

func (m Model) copyLastReply() (tea.Model, tea.Cmd) {
	content, ok := lastAssistantContent(m.State().Transcript)
	if !ok {
		m.notice = "Nothing to copy yet"
		return m, nil
	}
	if err := copyToClipboard(content); err != nil {
		m.log.Warn().Err(err).Msg("clipboard write failed")
		m.notice = "Clipboard unavailable"
		return m, nil
	}
	m.notice = "Reply copied"
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// syncInput focuses the input iff the user may submit.
func (m *Model) syncInput() tea.Cmd {
	if m.State().InputEnabled() {
		if !m.input.Focused() {
			return m.input.Focus()
		}
		return nil
	}
	m.input.Blur()
	return nil
}

// refresh re-renders the transcript and scrolls to the latest turn.
func (m *Model) refresh() {
	m.updateViewport()
	m.viewport.GotoBottom()
}

func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderMessages())
}
