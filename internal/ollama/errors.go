// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// ErrorType classifies client failures so callers can branch on the
// category without string matching.
type ErrorType int

const (
	// ErrorTypeConnection - the service is unreachable.
	ErrorTypeConnection ErrorType = iota
	// ErrorTypeTimeout - the request or stream exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeModelNotFound - the requested model is not installed.
	ErrorTypeModelNotFound
	// ErrorTypeAPI - the service answered with an error status.
	ErrorTypeAPI
	// ErrorTypeStream - the stream body could not be read.
	ErrorTypeStream
)

// Sentinel errors for errors.Is checks.
var (
	ErrNotRunning    = errors.New("ollama service is not running")
	ErrTimeout       = errors.New("request timed out")
	ErrModelNotFound = errors.New("model not found")
)

// ClientError wraps a failure with its classification and cause.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

func newClientError(t ErrorType, message string, cause error) *ClientError {
	return &ClientError{Type: t, Message: message, Cause: cause}
}

// FriendlyMessage turns a classified error into actionable text for
// the conversation surfaces.
func FriendlyMessage(err error) string {
	switch {
	case IsNotRunning(err):
		return "cannot reach the service - is Ollama running? (ollama serve)"
	case IsModelNotFound(err):
		return "model not installed - try: ollama pull <name>"
	case IsTimeout(err):
		return "request timed out"
	default:
		return err.Error()
	}
}

// IsNotRunning reports whether err means the service is unreachable.
func IsNotRunning(err error) bool {
	if errors.Is(err, ErrNotRunning) {
		return true
	}
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrorTypeConnection
}

// IsTimeout reports whether err is a deadline failure.
func IsTimeout(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrorTypeTimeout
}

// IsModelNotFound reports whether err means the model is not installed.
func IsModelNotFound(err error) bool {
	if errors.Is(err, ErrModelNotFound) {
		return true
	}
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrorTypeModelNotFound
}
