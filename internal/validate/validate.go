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

// Package validate holds the per-message preconditions and defaulting
// rules shared by the manager and the RPC adapter. Validate methods
// check preconditions only; Normalize methods run Validate first and
// then apply defaults, so normalization is always idempotent.
package validate

import (
	"github.com/laizhenxing/xreservation/internal/rsvperr"
	"github.com/laizhenxing/xreservation/internal/types"
)

// Reservation checks that r is eligible to be inserted: non-empty
// user and resource ids, and a well-formed, non-inverted timespan.
func Reservation(r *types.Reservation) error {
	if r.UserID == "" {
		return rsvperr.New(rsvperr.InvalidUserID, "user_id must not be empty")
	}
	if r.ResourceID == "" {
		return rsvperr.New(rsvperr.InvalidResourceID, "resource_id must not be empty")
	}
	if r.Start.IsZero() || r.End.IsZero() {
		return rsvperr.New(rsvperr.InvalidTimespan, "start and end must both be set")
	}
	if !r.Start.Before(r.End) {
		return rsvperr.New(rsvperr.InvalidTimespan, "start must be before end")
	}
	return nil
}

// ID checks that id is a valid reservation identifier.
func ID(id int64) error {
	if id <= 0 {
		return rsvperr.New(rsvperr.InvalidReservationID, "id must be greater than 0")
	}
	return nil
}

// Query checks a ReservationQuery: status must decode to a known
// variant, and when both bounds are present start must not be after
// end.
func Query(q *types.ReservationQuery) error {
	if !validStatus(q.Status) {
		return rsvperr.New(rsvperr.InvalidStatus, "unrecognized status")
	}
	if q.Start != nil && q.End != nil && q.Start.After(*q.End) {
		return rsvperr.New(rsvperr.InvalidTimespan, "start must not be after end")
	}
	return nil
}

// NormalizeQuery validates q and then defaults status == unknown to
// pending. Normalization is idempotent.
func NormalizeQuery(q *types.ReservationQuery) (types.ReservationQuery, error) {
	if err := Query(q); err != nil {
		return types.ReservationQuery{}, err
	}
	out := *q
	if out.Status == types.StatusUnknown {
		out.Status = types.StatusPending
	}
	return out, nil
}

const (
	minPageSize = 10
	maxPageSize = 100
)

// Filter checks a ReservationFilter: page_size in [10, 100], cursor
// (if present) non-negative, and status decodable.
func Filter(f *types.ReservationFilter) error {
	if f.PageSize < minPageSize || f.PageSize > maxPageSize {
		return rsvperr.New(rsvperr.InvalidPageSize, "page_size must be between 10 and 100")
	}
	if f.Cursor != nil && *f.Cursor < 0 {
		return rsvperr.New(rsvperr.InvalidCursor, "cursor must be non-negative")
	}
	if !validStatus(f.Status) {
		return rsvperr.New(rsvperr.InvalidStatus, "unrecognized status")
	}
	return nil
}

// NormalizeFilter validates f and then defaults status == unknown to
// pending. Normalization is idempotent.
func NormalizeFilter(f *types.ReservationFilter) (types.ReservationFilter, error) {
	if err := Filter(f); err != nil {
		return types.ReservationFilter{}, err
	}
	out := *f
	if out.Status == types.StatusUnknown {
		out.Status = types.StatusPending
	}
	return out, nil
}

func validStatus(s types.ReservationStatus) bool {
	switch s {
	case types.StatusUnknown, types.StatusPending, types.StatusConfirmed, types.StatusBlocked:
		return true
	default:
		return false
	}
}
