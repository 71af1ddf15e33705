// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation folds connection events into a chat transcript.
package conversation

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jeranaias/rigchat/internal/transport"
	"github.com/rs/zerolog"
)

type recordingSender struct {
	sent []string
	err  error
}

func (r *recordingSender) Send(text string) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, text)
	return nil
}

func TestController_DispatchSendsAcceptedSubmit(t *testing.T) {
	sender := &recordingSender{}
	var observed []State
	c := NewController(sender, zerolog.Nop(), func(s State) { observed = append(observed, s) })

	c.Dispatch(Opened{})
	eff, err := c.Dispatch(Submit{Text: " Hi "})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if eff.Kind != EffectSend {
		t.Fatalf("effect = %+v", eff)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "Hi" {
		t.Errorf("sent = %v, want [Hi]", sender.sent)
	}
	if len(observed) != 2 {
		t.Errorf("observer called %d times, want 2", len(observed))
	}
	if !c.State().AwaitingReply {
		t.Error("controller state should be awaiting")
	}
}

func TestController_RejectedSubmitDoesNotSend(t *testing.T) {
	sender := &recordingSender{}
	c := NewController(sender, zerolog.Nop(), nil)

	eff, err := c.Dispatch(Submit{Text: "Hi"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if eff.Kind != EffectRejected || eff.Reason != RejectDisconnected {
		t.Errorf("effect = %+v", eff)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent = %v, want nothing", sender.sent)
	}
}

func TestController_SendFailureKeepsUserTurn(t *testing.T) {
	sender := &recordingSender{err: transport.ErrNotConnected}
	c := NewController(sender, zerolog.Nop(), nil)

	c.Dispatch(Opened{})
	_, err := c.Dispatch(Submit{Text: "Hi"})
	if !errors.Is(err, transport.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
	if c.State().Transcript.Len() != 1 {
		t.Errorf("turns = %d, want 1", c.State().Transcript.Len())
	}
}

func TestController_NilEvent(t *testing.T) {
	called := false
	c := NewController(nil, zerolog.Nop(), func(State) { called = true })

	if _, err := c.Dispatch(nil); err != nil {
		t.Fatalf("Dispatch(nil): %v", err)
	}
	if called {
		t.Error("observer should not run for a nil event")
	}
}

func TestFromTransport(t *testing.T) {
	failure := errors.New("boom")
	tests := []struct {
		in   transport.Event
		want Event
	}{
		{transport.Event{Kind: transport.EventOpened}, Opened{}},
		{transport.Event{Kind: transport.EventChunk, Text: "x"}, Chunk{Text: "x"}},
		{transport.Event{Kind: transport.EventEndOfTurn}, EndOfTurn{}},
		{transport.Event{Kind: transport.EventClosed, Err: failure}, Closed{Err: failure}},
		{transport.Event{}, nil},
	}

	for _, tt := range tests {
		if got := FromTransport(tt.in); got != tt.want {
			t.Errorf("FromTransport(%v) = %#v, want %#v", tt.in.Kind, got, tt.want)
		}
	}
}

func TestController_TraceLogsLastTurnPreview(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	c := NewController(&recordingSender{}, logger, nil)

	c.Dispatch(Opened{})
	c.Dispatch(Submit{Text: "Hi"})
	c.Dispatch(Chunk{Text: strings.Repeat("x", 100)})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	last := lines[len(lines)-1]
	if !strings.Contains(last, `"event":"chunk"`) {
		t.Fatalf("last log line = %s", last)
	}
	want := `"last":"` + strings.Repeat("x", tracePreviewLen-3) + `..."`
	if !strings.Contains(last, want) {
		t.Errorf("log line missing truncated preview: %s", last)
	}
}

func TestController_NoTraceWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	c := NewController(&recordingSender{}, logger, nil)

	c.Dispatch(Opened{})
	if buf.Len() != 0 {
		t.Errorf("unexpected output at info level: %s", buf.String())
	}
}
