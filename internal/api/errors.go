// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a gateway failure. Callers normally only display the
// message; Kind exists so that a 404 can be told apart where it matters.
type Kind int

const (
	// KindNetwork covers transport failures, rate-limiter cancellation and
	// undecodable responses.
	KindNetwork Kind = iota + 1
	// KindNotFound is an HTTP 404 from the API.
	KindNotFound
	// KindStatus is any other non-2xx status.
	KindStatus
)

// String returns the metric label for the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by every Client method.
type Error struct {
	Op      string // client operation, e.g. "list_posts"
	Kind    Kind
	Status  int // HTTP status; 0 for network failures
	Message string
	Err     error // underlying cause, if any
}

// Error returns the human-readable message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the transport cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// networkError wraps a failure that happened before or after the HTTP
// exchange itself.
func networkError(op string, err error) *Error {
	return &Error{
		Op:      op,
		Kind:    KindNetwork,
		Message: fmt.Sprintf("network error: %v", err),
		Err:     err,
	}
}

// statusError builds the error for a non-2xx response.
func statusError(op string, status int) *Error {
	if status == http.StatusNotFound {
		return &Error{
			Op:      op,
			Kind:    KindNotFound,
			Status:  status,
			Message: "resource not found (404)",
		}
	}
	return &Error{
		Op:      op,
		Kind:    KindStatus,
		Status:  status,
		Message: fmt.Sprintf("request failed with status %d: %s", status, http.StatusText(status)),
	}
}

// IsNotFound reports whether err is a gateway 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}
