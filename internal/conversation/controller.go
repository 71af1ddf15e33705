// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation folds connection events into a chat transcript.
package conversation

import (
	"github.com/rs/zerolog"
)

// tracePreviewLen bounds the last-turn text in trace logs.
const tracePreviewLen = 40

// Sender delivers a submitted message to the assistant.
// *transport.Session satisfies it.
type Sender interface {
	Send(text string) error
}

// Observer is called with the new state after every transition.
type Observer func(State)

// Controller owns one State and applies events to it in order.
//
// A Controller is not safe for concurrent use. The shell calls Dispatch from
// its single event loop.
type Controller struct {
	state   State
	sender  Sender
	log     zerolog.Logger
	observe Observer
}

// NewController creates a Controller in the initial state.
// observe may be nil.
func NewController(sender Sender, logger zerolog.Logger, observe Observer) *Controller {
	return &Controller{
		state:   Initial(),
		sender:  sender,
		log:     logger.With().Str("component", "conversation").Logger(),
		observe: observe,
	}
}

// State returns the current state snapshot.
func (c *Controller) State() State {
	return c.state
}

// Dispatch reduces ev into the current state and carries out the resulting
// effect. The returned error is the Send failure, if any. A failed send
// leaves the user turn in place; the transport reports the drop separately.
func (c *Controller) Dispatch(ev Event) (Effect, error) {
	if ev == nil {
		return Effect{}, nil
	}

	next, eff := Reduce(c.state, ev)
	c.state = next

	if e := c.log.Trace(); e.Enabled() {
		e = e.Str("event", EventName(ev)).
			Int("turns", next.Transcript.Len()).
			Bool("awaiting", next.AwaitingReply).
			Str("connection", next.Connection.String())
		if last, ok := next.Transcript.Last(); ok {
			e = e.Str("last", last.Preview(tracePreviewLen))
		}
		e.Msg("reduced")
	}

	if c.observe != nil {
		c.observe(next)
	}

	switch eff.Kind {
	case EffectRejected:
		c.log.Debug().Str("reason", eff.Reason.String()).Msg("submit ignored")
	case EffectSend:
		if c.sender == nil {
			return eff, nil
		}
		if err := c.sender.Send(eff.Text); err != nil {
			c.log.Warn().Err(err).Msg("send failed")
			return eff, err
		}
		c.log.Debug().Int("turns", next.Transcript.Len()).Msg("message sent")
	}

	return eff, nil
}
