// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package api

import "errors"

// Kind classifies a remote API failure. Callers branch on Kind, never on
// message content.
type Kind uint8

const (
	// KindTransport covers failures where the call could not complete:
	// network errors, timeouts, unexpected status codes, open circuit.
	// Retried naturally on the next poll cycle.
	KindTransport Kind = iota

	// KindAuthentication covers login failures and 401 responses: the
	// identifier is unknown or the credentials are invalid.
	KindAuthentication

	// KindAuthorization covers a verified identity that lacks admin
	// privilege at sign-in time.
	KindAuthorization

	// KindPrivilegeLoss is the distinguished sentinel: a 403 on a metrics
	// fetch for an already-authenticated session. Requires forced
	// sign-out, not just a displayed message.
	KindPrivilegeLoss

	// KindMalformed covers unexpected payload shapes: missing identifier,
	// missing success/data envelope. Never silently coerced.
	KindMalformed
)

// String returns the kind's name for logging and telemetry labels.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindPrivilegeLoss:
		return "privilege_loss"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is a tagged remote API failure.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface. The message is what the UI shows,
// so login failures carry the remote body verbatim.
func (e *Error) Error() string {
	return e.Message
}

// newError builds a tagged error.
func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the Kind from an error chain. Errors that did not
// originate in this package classify as transport failures.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransport
}

// IsPrivilegeLoss reports whether err is the privilege-loss sentinel.
func IsPrivilegeLoss(err error) bool {
	return KindOf(err) == KindPrivilegeLoss
}
