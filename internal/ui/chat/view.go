// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rigchat/internal/conversation"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/ui/styles"
	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	input := m.renderInput()
	status := m.renderStatusBar()

	availableHeight := m.height - lipgloss.Height(header) - lipgloss.Height(input) - lipgloss.Height(status)
	if availableHeight < 1 {
		availableHeight = 1
	}

	messages := m.viewport.View()
	if lipgloss.Height(messages) != availableHeight {
		messages = lipgloss.NewStyle().
			Height(availableHeight).
			MaxHeight(availableHeight).
			Width(m.width).
			Render(messages)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		messages,
		input,
		status,
	)
}

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("rigchat")
	turns := m.State().Transcript.Len()
	subtitle := ""
	if turns > 0 {
		subtitle = m.theme.StatusMuted.Render("  " + pluralize(turns, "turn", "turns"))
	}
	return m.theme.Header.Width(m.width).Render(title + subtitle)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderMessages renders every turn in order plus the typing indicator.
func (m *Model) renderMessages() string {
	state := m.State()
	if state.Transcript.IsEmpty() && !state.ShowTyping() {
		return m.renderEmptyState(state)
	}

	var parts []string
	for _, turn := range state.Transcript.Turns() {
		parts = append(parts, m.renderTurn(turn))
	}

	if state.ShowTyping() {
		parts = append(parts, m.renderTyping())
	}

	return strings.Join(parts, "\n")
}

func (m *Model) renderTurn(turn model.Turn) string {
	if turn.IsUser() {
		return m.renderUserTurn(turn)
	}
	return m.renderAssistantTurn(turn)
}

// renderUserTurn renders a user turn right-aligned in a blue bubble.
func (m *Model) renderUserTurn(turn model.Turn) string {
	maxWidth := m.theme.BubbleWidth()
	wrapWidth := calculateContentWidth(maxWidth, 6)

	rendered := m.theme.UserBubble.
		MarginLeft(0).
		MaxWidth(maxWidth).
		Render(wrapText(turn.Content, wrapWidth))

	label := m.renderLabel(turn)
	block := lipgloss.JoinVertical(lipgloss.Right, label, rendered)

	marginLeft := m.width - lipgloss.Width(block) - 2
	if marginLeft < 0 {
		marginLeft = 0
	}
	return lipgloss.NewStyle().
		MarginLeft(marginLeft).
		MarginTop(1).
		Render(block)
}

// renderAssistantTurn renders an assistant turn left-aligned in a violet
// bubble, with a cursor while streaming and a marker when interrupted.
func (m *Model) renderAssistantTurn(turn model.Turn) string {
	maxWidth := m.theme.BubbleWidth()
	wrapWidth := calculateContentWidth(maxWidth, 6)

	content := wrapText(turn.Content, wrapWidth)
	if turn.Streaming {
		content += lipgloss.NewStyle().Foreground(styles.Purple).Render("_")
	}

	rendered := m.theme.AssistantBubble.
		MarginRight(0).
		MaxWidth(maxWidth).
		Render(content)

	parts := []string{m.renderLabel(turn), rendered}
	if turn.Interrupted {
		parts = append(parts, m.theme.Interrupted.Render(
			styles.StatusIndicators.Interrupted+" reply interrupted: connection lost"))
	}

	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m *Model) renderLabel(turn model.Turn) string {
	label := m.theme.RoleLabel.Render(turn.Role.DisplayName())
	if m.showTimestamps && !turn.CreatedAt.IsZero() {
		label += " " + m.theme.Timestamp.Render(formatTimestamp(turn.CreatedAt))
	}
	return label
}

// renderTyping renders the trailing typing indicator.
func (m *Model) renderTyping() string {
	return lipgloss.NewStyle().
		MarginLeft(2).
		MarginTop(1).
		Render(m.theme.Typing.Render(m.spinner.View() + " Assistant is typing..."))
}

func (m *Model) renderEmptyState(state conversation.State) string {
	var text string
	switch {
	case m.connecting:
		text = "Connecting to " + m.session.URL() + "..."
	case state.Connection == conversation.Connected:
		text = "Connected. Type a message and press Enter."
	default:
		text = "Not connected. Restart rigchat to try again."
	}
	return m.theme.Empty.Render(text)
}

// =============================================================================
// INPUT & STATUS
// =============================================================================

func (m Model) renderInput() string {
	style := m.theme.InputContainer
	if !m.input.Focused() {
		style = m.theme.InputDisabled
	}
	box := style.Width(m.width).Render(m.input.View())

	hint := m.renderHint()
	return lipgloss.JoinVertical(lipgloss.Left, box, hint)
}

func (m Model) renderHint() string {
	state := m.State()
	var text string
	switch {
	case m.notice != "":
		text = m.notice
	case state.Connection != conversation.Connected:
		text = "Input disabled while disconnected"
	case state.AwaitingReply:
		text = "Waiting for reply..."
	default:
		var parts []string
		for _, b := range m.keyMap.ShortHelp() {
			h := b.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}
		text = strings.Join(parts, "  ")
	}
	return m.theme.InputHint.
		PaddingLeft(1).
		Render(util.TruncateWidth(text, max(m.width-2, 1)))
}

func (m Model) renderStatusBar() string {
	state := m.State()

	var indicator string
	switch {
	case m.connecting:
		indicator = m.theme.StatusConnecting.Render(styles.StatusIndicators.Connecting + " connecting")
	case state.Connection == conversation.Connected:
		indicator = m.theme.StatusConnected.Render(styles.StatusIndicators.Connected + " connected")
	default:
		indicator = m.theme.StatusDisconnected.Render(styles.StatusIndicators.Disconnected + " disconnected")
	}

	left := indicator + " " + m.theme.StatusMuted.Render(util.TruncateWidth(m.session.URL(), 40))

	var errText string
	switch {
	case m.sendErr != nil:
		errText = m.sendErr.Error()
	case state.LastError != nil:
		errText = state.LastError.Error()
	}

	if errText != "" {
		room := m.width - lipgloss.Width(left) - 4
		if room > 3 {
			left += "  " + m.theme.StatusError.Render(util.TruncateWidth(util.SingleLine(errText), room))
		}
	}

	return m.theme.StatusBar.Width(m.width).Render(left)
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
