// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the single WebSocket connection to the assistant.
package transport

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultEndOfTurnMarker is the frame text that closes an assistant turn.
const DefaultEndOfTurnMarker = "__END__"

// Options configures a Session.
type Options struct {
	// URL is the WebSocket endpoint (default: ws://localhost:8000/ws)
	URL string

	// EndOfTurnMarker is emitted as EventEndOfTurn instead of a chunk.
	// Empty disables marker detection.
	EndOfTurnMarker string

	// HandshakeTimeout bounds the opening handshake (default: 10s)
	HandshakeTimeout time.Duration

	// WriteTimeout bounds a single Send (default: 10s)
	WriteTimeout time.Duration

	// MaxMessageSize limits an incoming frame in bytes (default: 1 MiB)
	MaxMessageSize int64

	// EventBuffer is the capacity of the Events channel (default: 64)
	EventBuffer int

	// Header is sent with the opening handshake.
	Header http.Header

	// Logger receives connection lifecycle logs. The zero value discards.
	Logger zerolog.Logger
}

// DefaultOptions returns the default session options.
func DefaultOptions() Options {
	return Options{
		URL:              "ws://localhost:8000/ws",
		EndOfTurnMarker:  DefaultEndOfTurnMarker,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxMessageSize:   1 << 20,
		EventBuffer:      64,
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Session owns one WebSocket connection for its whole lifetime.
//
// A Session attempts to connect at most once. All lifecycle changes and
// incoming frames are delivered in arrival order on the channel returned by
// Events, which is closed after the single EventClosed. There is no
// reconnect and no send queue.
//
// Example:
//
//	s := transport.New(transport.DefaultOptions())
//	defer s.Close()
//	if err := s.Connect(ctx); err != nil {
//	    return err
//	}
//	for ev := range s.Events() {
//	    ...
//	}
type Session struct {
	opts   Options
	id     string
	log    zerolog.Logger
	dialer *websocket.Dialer

	state     atomicState
	attempted atomic.Bool
	closing   atomic.Bool

	events chan Event
	done   chan struct{}

	connMu sync.Mutex
	conn   *websocket.Conn

	writeMu sync.Mutex

	failMu  sync.Mutex
	failure error

	pump       sync.WaitGroup
	closeOnce  sync.Once
	finishOnce sync.Once
}

// New creates a Session. Zero durations and sizes fall back to defaults;
// EndOfTurnMarker is used as given.
func New(opts Options) *Session {
	defaults := DefaultOptions()
	if opts.URL == "" {
		opts.URL = defaults.URL
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaults.WriteTimeout
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = defaults.MaxMessageSize
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = defaults.EventBuffer
	}

	id := uuid.NewString()
	return &Session{
		opts: opts,
		id:   id,
		log: opts.Logger.With().
			Str("component", "transport").
			Str("session_id", id).
			Logger(),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		events: make(chan Event, opts.EventBuffer),
		done:   make(chan struct{}),
	}
}

// ID returns the session identifier used for log correlation.
func (s *Session) ID() string {
	return s.id
}

// URL returns the endpoint this session dials.
func (s *Session) URL() string {
	return s.opts.URL
}

// State returns the current connection state.
func (s *Session) State() State {
	return s.state.Load()
}

// Events returns the ordered event channel. It is closed after EventClosed.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Connect dials the endpoint. It emits EventOpened on success and
// EventClosed with the dial error on failure. Only the first call dials;
// later calls return ErrAlreadyConnected.
func (s *Session) Connect(ctx context.Context) error {
	if s.isDone() {
		return ErrClosed
	}
	if !s.attempted.CompareAndSwap(false, true) {
		return ErrAlreadyConnected
	}

	s.log.Info().Str("url", s.opts.URL).Msg("dialing")

	conn, resp, err := s.dialer.DialContext(ctx, s.opts.URL, s.opts.Header)
	if err != nil {
		msg := "failed to connect"
		if resp != nil {
			msg = "handshake rejected with " + resp.Status
		}
		dialErr := newError(ErrKindDial, "connect", msg, err)
		s.log.Warn().Err(err).Str("url", s.opts.URL).Msg("dial failed")
		s.finish(dialErr)
		return dialErr
	}
	conn.SetReadLimit(s.opts.MaxMessageSize)

	s.connMu.Lock()
	if s.isDone() {
		s.connMu.Unlock()
		conn.Close()
		s.finish(nil)
		return ErrClosed
	}
	s.conn = conn
	s.state.Store(StateConnected)
	s.emit(Event{Kind: EventOpened})
	s.pump.Add(1)
	s.connMu.Unlock()

	go s.readPump(conn)

	s.log.Info().Msg("connected")
	return nil
}

// Send writes text as one text frame. It returns ErrNotConnected when the
// session is not connected. A write failure tears the connection down and
// is reported as EventClosed.
func (s *Session) Send(text string) error {
	if s.State() != StateConnected {
		return ErrNotConnected
	}

	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
		return s.failWrite(conn, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return s.failWrite(conn, err)
	}

	s.log.Debug().Int("bytes", len(text)).Msg("sent")
	return nil
}

// Close tears the connection down. It is safe to call more than once and
// from defer. If EventClosed has not been emitted yet, Close emits it with a
// nil error and closes the event channel.
func (s *Session) Close() error {
	var closeErr error
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		s.attempted.Store(true)

		s.connMu.Lock()
		close(s.done)
		conn := s.conn
		s.connMu.Unlock()

		if conn != nil {
			s.writeMu.Lock()
			deadline := time.Now().Add(time.Second)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			s.writeMu.Unlock()
			closeErr = conn.Close()
		}

		s.pump.Wait()
		s.finish(nil)
		s.log.Info().Msg("session closed")
	})
	return closeErr
}

// =============================================================================
// INTERNALS
// =============================================================================

// readPump is the only producer of chunk events.
func (s *Session) readPump(conn *websocket.Conn) {
	defer s.pump.Done()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.finish(s.readError(err))
			return
		}
		if msgType != websocket.TextMessage {
			s.log.Debug().Int("type", msgType).Msg("ignoring non-text frame")
			continue
		}

		text := string(data)
		if s.opts.EndOfTurnMarker != "" && text == s.opts.EndOfTurnMarker {
			s.emit(Event{Kind: EventEndOfTurn})
			continue
		}
		s.emit(Event{Kind: EventChunk, Text: text})
	}
}

// readError maps a read failure to the error carried by EventClosed.
func (s *Session) readError(err error) error {
	if s.closing.Load() {
		return nil
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.log.Info().Msg("peer closed connection")
		return nil
	}
	s.log.Warn().Err(err).Msg("read failed")
	return newError(ErrKindRead, "read", "connection lost", err)
}

func (s *Session) failWrite(conn *websocket.Conn, err error) error {
	writeErr := newError(ErrKindWrite, "send", "failed to write frame", err)
	s.log.Warn().Err(err).Msg("write failed, closing connection")

	s.failMu.Lock()
	if s.failure == nil {
		s.failure = writeErr
	}
	s.failMu.Unlock()

	s.state.Store(StateDisconnected)
	conn.Close()
	return writeErr
}

// finish runs once: it marks the session disconnected, emits EventClosed and
// closes the event channel.
func (s *Session) finish(err error) {
	s.finishOnce.Do(func() {
		s.state.Store(StateDisconnected)

		s.failMu.Lock()
		if s.failure != nil {
			err = s.failure
		}
		s.failMu.Unlock()

		s.connMu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.connMu.Unlock()

		s.emit(Event{Kind: EventClosed, Err: err})
		close(s.events)
	})
}

// emit delivers ev in order. It only gives up once Close has been called and
// the buffer is full.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
		return
	default:
	}
	select {
	case s.events <- ev:
	case <-s.done:
		s.log.Debug().Str("event", ev.Kind.String()).Msg("dropped event after close")
	}
}

func (s *Session) isDone() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
