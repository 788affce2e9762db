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

// Package types contains the data types shared across the reservation
// service: the persisted entity, the query and filter shapes the
// planner consumes, and the small value types that travel between the
// manager and the RPC adapter. Keeping them in one leaf package lets
// the manager, planner, pager, and server packages depend on a single
// vocabulary without import cycles.
package types

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ReservationStatus mirrors the `reservation_status` enum declared in
// the persisted schema (schema `rsvp`, see internal/rsvptest). Unknown
// is a normalization sentinel only: it is never written to storage.
type ReservationStatus int32

//go:generate go run golang.org/x/tools/cmd/stringer -type=ReservationStatus -trimprefix Status
const (
	StatusUnknown ReservationStatus = iota
	StatusPending
	StatusConfirmed
	// StatusBlocked is reserved in the enum and never entered by any
	// current operation. See reservation lifecycle notes in
	// internal/manager.
	StatusBlocked
)

// ReservationUpdateTypeKind distinguishes entries on the (unimplemented)
// listen change-feed. The variants mirror the wire schema's
// ReservationUpdateType enum; nothing in this repository currently
// produces a value of this type.
type ReservationUpdateTypeKind int32

//go:generate go run golang.org/x/tools/cmd/stringer -type=ReservationUpdateTypeKind -trimprefix UpdateType
const (
	UpdateTypeUnknown ReservationUpdateTypeKind = iota
	UpdateTypeCreate
	UpdateTypeUpdate
	UpdateTypeDelete
)

// Reservation is the primary entity: a hold on ResourceID by UserID
// over the half-open window [Start, End).
type Reservation struct {
	ID         int64
	UserID     string
	ResourceID string
	Start      time.Time
	End        time.Time
	Status     ReservationStatus
	Note       string
}

// GetID satisfies the pager package's idItem interface so filter
// results can be paged without a wrapper type.
func (r Reservation) GetID() int64 { return r.ID }

// DBName returns the lowercase spelling the persisted schema's
// reservation_status enum uses ("unknown", "pending", "confirmed",
// "blocked"). It is distinct from String(), which the stringer
// convention renders in title case for logs and error messages. SQL
// call sites pass the ReservationStatus itself and Value binds it as
// DBName(), never as the enum's int32 representation, since pgx cannot
// encode an int32 into a text-backed enum OID.
func (s ReservationStatus) DBName() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	case StatusBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Value implements driver.Valuer so pgx can bind a ReservationStatus
// directly as a query argument against the persisted schema's
// text-backed reservation_status enum, without a caller needing to
// spell out DBName() at every call site.
func (s ReservationStatus) Value() (driver.Value, error) {
	return s.DBName(), nil
}

// Scan implements sql.Scanner so pgx can read a reservation_status
// column back into a ReservationStatus, the Value/Scan pair being how
// pgx v5 supports a Go type standing in for a custom Postgres enum
// without a registered pgtype codec.
func (s *ReservationStatus) Scan(value interface{}) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return fmt.Errorf("cannot scan %T into ReservationStatus", value)
	}

	switch str {
	case "unknown":
		*s = StatusUnknown
	case "pending":
		*s = StatusPending
	case "confirmed":
		*s = StatusConfirmed
	case "blocked":
		*s = StatusBlocked
	default:
		return fmt.Errorf("unrecognized reservation_status %q", str)
	}
	return nil
}

// ReservationWindow is the resource and half-open timespan of one
// reservation, used to describe both sides of a conflict.
type ReservationWindow struct {
	ResourceID string
	Start      time.Time
	End        time.Time
}

// ReservationQuery is a range query over reservations: an optional
// user, an optional resource, a status, an optional [Start, End] time
// bound, and an ordering direction. Absent bounds mean -infinity /
// +infinity; absent user/resource mean "match any".
type ReservationQuery struct {
	UserID     string
	ResourceID string
	Status     ReservationStatus
	Start      *time.Time
	End        *time.Time
	Desc       bool
}

// ReservationFilter is a paged filter over reservations, ordered by
// ID.
type ReservationFilter struct {
	UserID     string
	ResourceID string
	Status     ReservationStatus
	Cursor     *int64
	PageSize   int32
	Desc       bool
}

// FilterPager is the small record describing adjacent pages relative
// to a ReservationFilter result. Total is always nil: the planner does
// not compute totals (see internal/pager).
type FilterPager struct {
	Prev  *int64
	Next  *int64
	Total *int64
}

// Conflict describes an overlap detected by the storage engine's
// range-exclusion constraint: the window the caller attempted to
// insert (New) and the window of the row already occupying the
// resource (Old).
type Conflict struct {
	New ReservationWindow
	Old ReservationWindow
}

// UnparsedConflict is retained when the storage engine's conflict
// detail string could not be parsed into a structured Conflict. The
// raw detail is preserved so operators can still diagnose it.
type UnparsedConflict struct {
	Detail string
}

// Querier is implemented by pgxpool.Pool, pgxpool.Conn, pgxpool.Tx,
// and pgx.Tx. It is the narrow surface the manager and planner need
// from a connection, letting manager methods run equally well against
// the pool directly or against a transaction handle.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
