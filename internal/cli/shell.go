// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// shell.go - Line-mode chat for terminals without full-screen support.
//
// The shell reads lines with liner and prints reply chunks as they arrive.
// A prompt is shown only once the conversation accepts input and the current
// reply has settled: it ended with the end-of-turn marker, or no chunk has
// arrived for the idle timeout when the marker is disabled. End of input
// waits for the same point, so piped stdin never cuts a reply short.
//
// Ctrl+C or Ctrl+D exits.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/jeranaias/rigchat/internal/config"
	"github.com/jeranaias/rigchat/internal/conversation"
	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/transport"
	"github.com/jeranaias/rigchat/internal/ui/chat"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads one line of user input.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for the shell.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// Prompt reads a line of input. Non-empty input is added to history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with 0600 permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// scannerReader reads lines from a non-terminal stdin.
type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newScannerReader(r io.Reader, out io.Writer) *scannerReader {
	return &scannerReader{scanner: bufio.NewScanner(r), out: out}
}

// Prompt prints prompt and reads the next line. It returns io.EOF at the end
// of input.
func (r *scannerReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

// =============================================================================
// SHELL

// lockedWriter serializes writes from the shell and its line reader.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// =============================================================================
// SHELL
// =============================================================================

// DefaultIdleTimeout is how long the shell waits for more reply text before
// prompting again when turns carry no end marker.
const DefaultIdleTimeout = 2 * time.Second

// ShellOptions controls when the shell considers a reply finished.
type ShellOptions struct {
	// EndOfTurn is true when the server marks the end of each reply.
	EndOfTurn bool

	// IdleTimeout ends a reply when EndOfTurn is false.
	IdleTimeout time.Duration

	// Width of separator lines. Zero uses DefaultTerminalWidth.
	Width int
}

// Shell runs a conversation over a session in line mode.
type Shell struct {
	session chat.Session
	ctrl    *conversation.Controller
	in      LineReader
	out     io.Writer
	opts    ShellOptions
	log     zerolog.Logger

	receiving bool // chunks arrived within the idle timeout
	midLine   bool // output does not end with a newline
}

type lineResult struct {
	text string
	err  error
}

// NewShell creates a shell reading from in and writing to out.
func NewShell(session chat.Session, in LineReader, out io.Writer, logger zerolog.Logger, opts ShellOptions) *Shell {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Width <= 0 {
		opts.Width = DefaultTerminalWidth
	}
	return &Shell{
		session: session,
		ctrl:    conversation.NewController(session, logger, nil),
		in:      in,
		out:     out,
		opts:    opts,
		log:     logger.With().Str("component", "shell").Logger(),
	}
}

// State returns the current conversation state.
func (s *Shell) State() conversation.State {
	return s.ctrl.State()
}

// Run connects the session and runs until the user quits, the connection
// closes or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, DimStyle.Render("Connecting to "+s.session.URL()+"..."))
	defer s.printSummary()

	connected := make(chan error, 1)
	go func() {
		connected <- s.session.Connect(ctx)
	}()

	want := make(chan struct{}, 1)
	lines := make(chan lineResult, 1)
	go s.readLines(want, lines)
	defer close(want)

	idle := time.NewTimer(s.opts.IdleTimeout)
	idle.Stop()
	defer idle.Stop()

	events := s.session.Events()
	prompting := false
	inputDone := false

	for {
		if s.settled() {
			if inputDone {
				s.endLine()
				return nil
			}
			if !prompting {
				s.endLine()
				prompting = true
				want <- struct{}{}
			}
		}

		select {
		case <-ctx.Done():
			return nil

		case err := <-connected:
			connected = nil
			if err != nil {
				s.log.Warn().Err(err).Msg("connect failed")
			}

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Kind == transport.EventChunk && !s.opts.EndOfTurn {
				s.receiving = true
				idle.Reset(s.opts.IdleTimeout)
			}
			if done := s.handleEvent(ev); done {
				return nil
			}

		case <-idle.C:
			s.receiving = false

		case res := <-lines:
			prompting = false
			if res.err != nil {
				// Keep draining until the reply in flight settles.
				inputDone = true
				continue
			}
			s.submit(res.text)
		}
	}
}

// settled reports whether the user may type: input is enabled and the last
// reply has finished streaming.
func (s *Shell) settled() bool {
	st := s.ctrl.State()
	if !st.InputEnabled() {
		return false
	}
	if !s.opts.EndOfTurn {
		return !s.receiving
	}
	last, ok := st.Transcript.Last()
	return !ok || !last.Streaming
}

// readLines prompts once per request on want.
func (s *Shell) readLines(want <-chan struct{}, lines chan<- lineResult) {
	for range want {
		text, err := s.in.Prompt(PromptStyle.Render("you> "))
		lines <- lineResult{text: text, err: err}
		if err != nil {
			return
		}
	}
}

func (s *Shell) submit(text string) {
	eff, err := s.ctrl.Dispatch(conversation.Submit{Text: text})
	if err != nil {
		fmt.Fprintf(s.out, "%s %v\n", ErrorStyle.Render("[send failed]"), err)
		return
	}
	if eff.Kind == conversation.EffectSend {
		fmt.Fprintln(s.out, DimStyle.Render("Assistant is typing..."))
	}
}

// handleEvent reduces one transport event and prints its effect on the
// transcript. It reports whether the shell should exit.
func (s *Shell) handleEvent(ev transport.Event) bool {
	before := s.ctrl.State()
	s.ctrl.Dispatch(conversation.FromTransport(ev))
	after := s.ctrl.State()

	switch ev.Kind {
	case transport.EventOpened:
		fmt.Fprintln(s.out, SuccessStyle.Render("[*] connected")+" "+
			DimStyle.Render("Type a message and press Enter. Ctrl+D quits."))
		fmt.Fprintln(s.out, RenderSeparator(s.opts.Width))

	case transport.EventChunk:
		if after.Transcript.Len() > before.Transcript.Len() {
			fmt.Fprint(s.out, AssistantLabelStyle.Render("Assistant: "))
			s.midLine = true
		}
		if ev.Text != "" {
			fmt.Fprint(s.out, ev.Text)
			s.midLine = !strings.HasSuffix(ev.Text, "\n")
		}

	case transport.EventEndOfTurn:
		s.endLine()

	case transport.EventClosed:
		if s.midLine {
			fmt.Fprintln(s.out)
			s.midLine = false
		}
		printClosed(s.out, before, after)
		fmt.Fprintln(s.out, RenderSeparator(s.opts.Width))
		return true
	}
	return false
}

// endLine terminates a partially printed reply line.
func (s *Shell) endLine() {
	if s.midLine {
		fmt.Fprintln(s.out)
		s.midLine = false
	}
}

// printSummary reports how many messages were exchanged.
func (s *Shell) printSummary() {
	tr := s.ctrl.State().Transcript
	if tr.Len() == 0 {
		return
	}
	fmt.Fprintln(s.out, DimStyle.Render(fmt.Sprintf("%d sent, %d received",
		tr.CountByRole(model.RoleUser), tr.CountByRole(model.RoleAssistant))))
}

// printClosed reports a closed connection and any reply it cut short.
func printClosed(w io.Writer, before, after conversation.State) {
	if last, ok := after.Transcript.Last(); ok && last.Interrupted {
		if prev, _ := before.Transcript.Last(); prev.Streaming {
			fmt.Fprintln(w, WarningStyle.Render("[!] reply interrupted: connection lost"))
		}
	}

	msg := "[X] disconnected"
	if after.LastError != nil {
		msg += ": " + after.LastError.Error()
	}
	fmt.Fprintln(w, ErrorStyle.Render(msg))
}
