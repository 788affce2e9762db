// Copyright 2024 The Reservation Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package rsvperr declares the error taxonomy shared by the manager
// and the RPC adapter, and the parser that turns a storage engine's
// range-exclusion violation into a structured Conflict.
package rsvperr

import (
	"errors"
	"fmt"

	"github.com/laizhenxing/xreservation/internal/types"
)

// Kind identifies one of the stable error categories that cross the
// adapter boundary. The RPC adapter maps each Kind to a status code;
// see internal/server/service.go.
type Kind int

const (
	// Unknown is the catch-all kind; it should not normally be
	// constructed directly.
	Unknown Kind = iota
	InvalidTimespan
	InvalidUserID
	InvalidResourceID
	InvalidReservationID
	InvalidPageSize
	InvalidCursor
	InvalidStatus
	MissingArgument
	NotFound
	ConflictReservation
	ConfigReadError
	ConfigParseError
	DBError
)

// Error is the concrete error type returned by the manager and the
// validator. It carries a Kind so the adapter can map it to a status
// code without string matching, plus whatever detail and wrapped cause
// are relevant to the kind.
type Error struct {
	Kind Kind

	// Detail is a short, kind-specific description, e.g. the offending
	// argument name or value.
	Detail string

	// Conflict is populated only when Kind == ConflictReservation and
	// the storage engine's detail string parsed successfully.
	Conflict *types.Conflict

	// Unparsed is populated only when Kind == ConflictReservation and
	// the detail string could not be parsed.
	Unparsed *types.UnparsedConflict

	// Cause is the underlying error, if any (typically, on a DBError
	// kind, a driver error wrapped via github.com/pkg/errors).
	Cause error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap lets errors.Is/errors.As reach the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

func (k Kind) String() string {
	switch k {
	case InvalidTimespan:
		return "invalid timespan"
	case InvalidUserID:
		return "invalid user id"
	case InvalidResourceID:
		return "invalid resource id"
	case InvalidReservationID:
		return "invalid reservation id"
	case InvalidPageSize:
		return "invalid page size"
	case InvalidCursor:
		return "invalid cursor"
	case InvalidStatus:
		return "invalid status"
	case MissingArgument:
		return "missing argument"
	case NotFound:
		return "not found"
	case ConflictReservation:
		return "conflicting reservation"
	case ConfigReadError:
		return "config read error"
	case ConfigParseError:
		return "config parse error"
	case DBError:
		return "database error"
	default:
		return "unknown error"
	}
}

// New constructs an *Error of the given kind with a detail string.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap constructs a DBError kind wrapping cause. Callers that already
// know a more specific kind (e.g. NotFound, ConflictReservation)
// should construct that kind directly instead.
func Wrap(cause error, detail string) *Error {
	return &Error{Kind: DBError, Detail: detail, Cause: cause}
}

// NotFoundf is a convenience constructor for the common NotFound case.
func NotFoundf(detail string) *Error {
	return &Error{Kind: NotFound, Detail: detail}
}

// AsRsvpError reports whether err is, or wraps, an *Error, returning
// it if so. A thin errors.As wrapper kept next to the error type it
// unwraps.
func AsRsvpError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
