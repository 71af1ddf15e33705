// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/rigchat/internal/conversation"
	"github.com/jeranaias/rigchat/internal/transport"
	"github.com/jeranaias/rigchat/internal/ui/styles"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is the connection the chat view drives. *transport.Session
// satisfies it.
type Session interface {
	conversation.Sender
	Connect(ctx context.Context) error
	Events() <-chan transport.Event
	URL() string
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat model.
type Options struct {
	Theme          *styles.Theme
	Session        Session
	Logger         zerolog.Logger
	ShowTimestamps bool
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
//
// The conversation state lives in a conversation.Controller. Model only
// holds presentation state and mirrors the controller after every event.
type Model struct {
	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Conversation
	ctrl    *conversation.Controller
	session Session
	ctx     context.Context

	// UI Components
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Status
	connecting     bool
	sendErr        error
	notice         string
	showTimestamps bool
	quitting       bool

	log zerolog.Logger
}

// New creates a chat model bound to a session. The session is connected
// from Init.
func New(ctx context.Context, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("auto")
	}

	keys := DefaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = keys.Newline
	ta.Blur()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII-compatible animation
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	logger := opts.Logger.With().Str("component", "chat").Logger()

	return Model{
		theme:          theme,
		ctrl:           conversation.NewController(opts.Session, opts.Logger, nil),
		session:        opts.Session,
		ctx:            ctx,
		viewport:       vp,
		input:          ta,
		spinner:        sp,
		keyMap:         keys,
		connecting:     true,
		showTimestamps: opts.ShowTimestamps,
		log:            logger,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init connects the session and starts listening for its events.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.connectCmd(),
		waitForEvent(m.session.Events()),
	)
}

// View renders the chat view.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderChat()
}

// connectCmd runs the single connection attempt off the event loop.
func (m Model) connectCmd() tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		return ConnectResultMsg{Err: session.Connect(ctx)}
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current conversation state.
func (m Model) State() conversation.State {
	return m.ctrl.State()
}

// InputFocused reports whether the input accepts keystrokes.
func (m Model) InputFocused() bool {
	return m.input.Focused()
}

// Connecting reports whether the connection attempt is still pending.
func (m Model) Connecting() bool {
	return m.connecting
}
