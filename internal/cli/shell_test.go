// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigchat/internal/transport"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// scriptedSession replays canned events. reply maps a sent text to the
// events the server answers with. A non-zero delay streams them from a
// goroutine with that pause before each one.
type scriptedSession struct {
	events  chan transport.Event
	dialErr error
	reply   map[string][]transport.Event
	delay   time.Duration
	sent    []string
}

func newScriptedSession() *scriptedSession {
	return &scriptedSession{
		events: make(chan transport.Event, 32),
		reply:  make(map[string][]transport.Event),
	}
}

func (s *scriptedSession) Connect(context.Context) error {
	if s.dialErr != nil {
		s.events <- transport.Event{Kind: transport.EventClosed, Err: s.dialErr}
		return s.dialErr
	}
	s.events <- transport.Event{Kind: transport.EventOpened}
	return nil
}

func (s *scriptedSession) Events() <-chan transport.Event { return s.events }
func (s *scriptedSession) URL() string                    { return "ws://test/ws" }

func (s *scriptedSession) Send(text string) error {
	s.sent = append(s.sent, text)
	evs := s.reply[text]
	if s.delay == 0 {
		for _, ev := range evs {
			s.events <- ev
		}
		return nil
	}
	go func() {
		for _, ev := range evs {
			time.Sleep(s.delay)
			s.events <- ev
		}
	}()
	return nil
}

// scriptedInput returns lines in order. When the script runs out it either
// returns io.EOF or blocks until the test ends.
type scriptedInput struct {
	lines   []string
	block   chan struct{}
	prompts atomic.Int32
}

func (r *scriptedInput) Prompt(string) (string, error) {
	r.prompts.Add(1)
	if len(r.lines) > 0 {
		line := r.lines[0]
		r.lines = r.lines[1:]
		return line, nil
	}
	if r.block != nil {
		<-r.block
	}
	return "", io.EOF
}

func blockingInput(t *testing.T, lines ...string) *scriptedInput {
	t.Helper()
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	return &scriptedInput{lines: lines, block: block}
}

func chunk(text string) transport.Event {
	return transport.Event{Kind: transport.EventChunk, Text: text}
}

func runTestShell(t *testing.T, session *scriptedSession, in LineReader, opts ShellOptions) (*Shell, string) {
	t.Helper()
	var out bytes.Buffer
	sh := NewShell(session, in, &out, zerolog.Nop(), opts)
	runUntilDone(t, sh)
	return sh, out.String()
}

// runPipedShell feeds input through a scannerReader the way runShell does
// for non-terminal stdin.
func runPipedShell(t *testing.T, session *scriptedSession, input string, opts ShellOptions) (*Shell, string) {
	t.Helper()
	var buf bytes.Buffer
	out := &lockedWriter{w: &buf}
	sh := NewShell(session, newScannerReader(strings.NewReader(input), out), out, zerolog.Nop(), opts)
	runUntilDone(t, sh)
	return sh, buf.String()
}

func runUntilDone(t *testing.T, sh *Shell) {
	t.Helper()
	ForceColorsEnabled(false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sh.Run(ctx))
	require.NoError(t, ctx.Err(), "shell did not return before the deadline")
}

var withMarker = ShellOptions{EndOfTurn: true}

// =============================================================================
// SHELL
// =============================================================================

func TestShell_StreamedReply(t *testing.T) {
	session := newScriptedSession()
	session.reply["Hi"] = []transport.Event{
		chunk("He"),
		chunk("llo!"),
		{Kind: transport.EventEndOfTurn},
		{Kind: transport.EventClosed},
	}

	sh, out := runTestShell(t, session, blockingInput(t, "  Hi  "), withMarker)

	assert.Equal(t, []string{"Hi"}, session.sent)
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "Assistant")
	assert.Contains(t, out, "Hello!")
	assert.Contains(t, out, "1 sent, 1 received")
	assert.Contains(t, out, strings.Repeat("-", DefaultTerminalWidth))

	tr := sh.State().Transcript
	require.Equal(t, 2, tr.Len())
	assert.Equal(t, "Hello!", tr.At(1).Content)
	assert.False(t, tr.At(1).Streaming)
}

func TestShell_ConnectionLostMidReply(t *testing.T) {
	session := newScriptedSession()
	session.reply["Hi"] = []transport.Event{
		chunk("Hel"),
		{Kind: transport.EventClosed, Err: errors.New("connection reset")},
	}

	sh, out := runTestShell(t, session, blockingInput(t, "Hi"), withMarker)

	assert.Contains(t, out, "Hel")
	assert.Contains(t, out, "reply interrupted")
	assert.Contains(t, out, "connection reset")

	last, ok := sh.State().Transcript.Last()
	require.True(t, ok)
	assert.Equal(t, "Hel", last.Content)
	assert.True(t, last.Interrupted)
	assert.False(t, sh.State().InputEnabled())
}

func TestShell_DialFailure(t *testing.T) {
	session := newScriptedSession()
	session.dialErr = errors.New("connection refused")
	in := blockingInput(t)

	_, out := runTestShell(t, session, in, withMarker)

	assert.Contains(t, out, "disconnected")
	assert.Contains(t, out, "connection refused")
	assert.Zero(t, in.prompts.Load(), "no prompt while disconnected")
	assert.Empty(t, session.sent)
}

func TestShell_EOFQuits(t *testing.T) {
	session := newScriptedSession()

	sh, out := runTestShell(t, session, &scriptedInput{}, withMarker)

	assert.Empty(t, session.sent)
	assert.Zero(t, sh.State().Transcript.Len())
	assert.NotContains(t, out, "sent,")
}

func TestShell_BlankLinesAreNotSent(t *testing.T) {
	session := newScriptedSession()
	in := &scriptedInput{lines: []string{"   ", ""}}

	sh, _ := runTestShell(t, session, in, withMarker)

	assert.Empty(t, session.sent)
	assert.Zero(t, sh.State().Transcript.Len())
	assert.EqualValues(t, 3, in.prompts.Load())
}

func TestShell_NoPromptWhileAwaiting(t *testing.T) {
	session := newScriptedSession()
	// No reply: the shell must not prompt again after sending.
	session.reply["Hi"] = []transport.Event{{Kind: transport.EventClosed}}
	in := blockingInput(t, "Hi", "second")

	sh, _ := runTestShell(t, session, in, withMarker)

	assert.Equal(t, []string{"Hi"}, session.sent)
	assert.EqualValues(t, 1, in.prompts.Load())
	assert.True(t, sh.State().AwaitingReply)
}

// Piped input ends right after the first line, long before the reply has
// streamed in. The shell must keep reading the reply and must not print a
// prompt into the middle of it.
func TestShell_PipedInputWaitsForEndOfTurn(t *testing.T) {
	session := newScriptedSession()
	session.delay = 20 * time.Millisecond
	session.reply["Hi"] = []transport.Event{
		chunk("He"),
		chunk("llo"),
		chunk(" world"),
		{Kind: transport.EventEndOfTurn},
	}

	sh, out := runPipedShell(t, session, "Hi\n", withMarker)

	last, ok := sh.State().Transcript.Last()
	require.True(t, ok)
	assert.Equal(t, "Hello world", last.Content)
	assert.False(t, last.Streaming)

	assert.Contains(t, out, "Hello world\n")
	assert.Equal(t, 2, strings.Count(out, "you>"))
	assert.Less(t, strings.Index(out, "Hello world"), strings.LastIndex(out, "you>"))
}

func TestShell_PipedInputWaitsForIdleWithoutMarker(t *testing.T) {
	session := newScriptedSession()
	session.delay = 20 * time.Millisecond
	session.reply["Hi"] = []transport.Event{
		chunk("He"),
		chunk("llo"),
		chunk(" world"),
	}

	sh, out := runPipedShell(t, session, "Hi\n", ShellOptions{IdleTimeout: 150 * time.Millisecond})

	last, ok := sh.State().Transcript.Last()
	require.True(t, ok)
	assert.Equal(t, "Hello world", last.Content)
	assert.Contains(t, out, "Hello world\n")
	assert.Equal(t, 2, strings.Count(out, "you>"))
}

func TestShell_SecondPromptFollowsEndOfTurn(t *testing.T) {
	session := newScriptedSession()
	session.delay = 10 * time.Millisecond
	session.reply["one"] = []transport.Event{chunk("first"), {Kind: transport.EventEndOfTurn}}
	session.reply["two"] = []transport.Event{chunk("second"), {Kind: transport.EventEndOfTurn}}

	sh, out := runPipedShell(t, session, "one\ntwo\n", withMarker)

	assert.Equal(t, []string{"one", "two"}, session.sent)
	assert.Equal(t, 4, sh.State().Transcript.Len())
	assert.Contains(t, out, "first\n")
	assert.Contains(t, out, "second\n")
	assert.Contains(t, out, "2 sent, 2 received")
}

// =============================================================================
// LINE READERS
// =============================================================================

func TestScannerReader(t *testing.T) {
	var out bytes.Buffer
	r := newScannerReader(strings.NewReader("one\ntwo\n"), &out)

	line, err := r.Prompt("> ")
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	line, err = r.Prompt("> ")
	require.NoError(t, err)
	assert.Equal(t, "two", line)

	_, err = r.Prompt("> ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "> > > ", out.String())
}
