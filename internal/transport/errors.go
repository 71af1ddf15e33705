// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport owns the single WebSocket connection to the assistant.
package transport

import (
	"errors"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes transport errors for handling.
type ErrorKind int

const (
	ErrKindUnknown ErrorKind = iota
	ErrKindDial
	ErrKindNotConnected
	ErrKindAlreadyConnected
	ErrKindClosed
	ErrKindWrite
	ErrKindRead
)

// String returns a short name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindDial:
		return "dial"
	case ErrKindNotConnected:
		return "not_connected"
	case ErrKindAlreadyConnected:
		return "already_connected"
	case ErrKindClosed:
		return "closed"
	case ErrKindWrite:
		return "write"
	case ErrKindRead:
		return "read"
	default:
		return "unknown"
	}
}

// TransportError represents a failure of a Session operation.
type TransportError struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Is matches sentinels by kind so wrapped errors with a cause still compare
// equal to ErrNotConnected and friends.
func (e *TransportError) Is(target error) bool {
	var t *TransportError
	if !errors.As(target, &t) {
		return false
	}
	return t.Cause == nil && t.Kind == e.Kind
}

// Sentinel errors for easy checking.
var (
	ErrNotConnected     = &TransportError{Kind: ErrKindNotConnected, Op: "send", Message: "session is not connected"}
	ErrAlreadyConnected = &TransportError{Kind: ErrKindAlreadyConnected, Op: "connect", Message: "session already attempted a connection"}
	ErrClosed           = &TransportError{Kind: ErrKindClosed, Op: "connect", Message: "session is closed"}
)

func newError(kind ErrorKind, op, message string, cause error) *TransportError {
	return &TransportError{Kind: kind, Op: op, Message: message, Cause: cause}
}

// IsDialError checks if an error came from a failed connection attempt.
func IsDialError(err error) bool {
	return hasKind(err, ErrKindDial)
}

// IsNotConnected checks if an error was caused by sending without a live connection.
func IsNotConnected(err error) bool {
	return hasKind(err, ErrKindNotConnected)
}

// IsAlreadyConnected checks if an error was caused by a second Connect call.
func IsAlreadyConnected(err error) bool {
	return hasKind(err, ErrKindAlreadyConnected)
}

func hasKind(err error, kind ErrorKind) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}
