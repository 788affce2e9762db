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

// Package manager is the reservation engine's core: it enforces the
// overlap invariant transactionally against the rsvp.reservations
// table, runs the reservation lifecycle (pending -> confirmed,
// note updates, cancellation), and streams query results to a
// consumer over a bounded channel.
package manager

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/laizhenxing/xreservation/internal/pager"
	"github.com/laizhenxing/xreservation/internal/planner"
	"github.com/laizhenxing/xreservation/internal/rsvperr"
	"github.com/laizhenxing/xreservation/internal/types"
	"github.com/laizhenxing/xreservation/internal/validate"
)

// exclusionConstraintCode is the PostgreSQL/CockroachDB SQLSTATE for
// an exclusion constraint violation. The range-exclusion constraint
// on (resource_id, timespan) enforces the no-overlap invariant, and
// the manager reclassifies a violation of exactly this constraint as
// ConflictReservation rather than a generic DBError.
const exclusionConstraintCode = "23P01"

// conflictSchema and conflictTable identify the persisted table whose
// exclusion-violation detail this manager knows how to parse. A
// violation reported against any other schema/table is surfaced as a
// plain DBError instead.
const (
	conflictSchema = "rsvp"
	conflictTable  = "reservations"
)

// Manager owns the connection pool and is the only component that
// talks to the storage engine directly.
type Manager struct {
	pool types.Querier
}

// New constructs a Manager backed by pool. pool is typically a
// *pgxpool.Pool, but any types.Querier (including a transaction
// handle, for tests) works.
func New(pool types.Querier) *Manager {
	return &Manager{pool: pool}
}

// Reserve validates r, inserts it with status pending, and returns
// the row with its server-assigned id. If r's window overlaps an
// existing row on the same resource, the insert fails atomically and
// the returned error is a *rsvperr.Error of kind ConflictReservation
// describing both windows.
func (m *Manager) Reserve(ctx context.Context, r types.Reservation) (types.Reservation, error) {
	defer timer(reserveDurations)()

	if err := validate.Reservation(&r); err != nil {
		return types.Reservation{}, err
	}

	const stmt = `
INSERT INTO rsvp.reservations (user_id, resource_id, timespan, status, note)
VALUES ($1, $2, tstzrange($3, $4, '[)'), $5, $6)
RETURNING id`

	row := m.pool.QueryRow(ctx, stmt,
		r.UserID, r.ResourceID, r.Start, r.End, types.StatusPending, r.Note)

	var id int64
	if err := row.Scan(&id); err != nil {
		return types.Reservation{}, m.classify(err)
	}

	r.ID = id
	r.Status = types.StatusPending
	reserveTotal.Inc()
	return r, nil
}

// ChangeStatus atomically transitions a reservation from pending to
// confirmed. It is the only state transition this service performs;
// calling it on an id that does not exist or is not currently pending
// returns NotFound.
func (m *Manager) ChangeStatus(ctx context.Context, id int64) (types.Reservation, error) {
	if err := validate.ID(id); err != nil {
		return types.Reservation{}, err
	}

	const stmt = `
UPDATE rsvp.reservations
SET status = $2
WHERE id = $1 AND status = $3
RETURNING id, user_id, resource_id, lower(timespan), upper(timespan), status, note`

	row := m.pool.QueryRow(ctx, stmt, id, types.StatusConfirmed, types.StatusPending)
	res, err := scanReservation(row)
	if err != nil {
		return types.Reservation{}, m.classifyNotFound(err)
	}
	return res, nil
}

// UpdateNote validates id, sets note, and returns the updated row.
func (m *Manager) UpdateNote(ctx context.Context, id int64, note string) (types.Reservation, error) {
	if err := validate.ID(id); err != nil {
		return types.Reservation{}, err
	}

	const stmt = `
UPDATE rsvp.reservations
SET note = $2
WHERE id = $1
RETURNING id, user_id, resource_id, lower(timespan), upper(timespan), status, note`

	row := m.pool.QueryRow(ctx, stmt, id, note)
	res, err := scanReservation(row)
	if err != nil {
		return types.Reservation{}, m.classifyNotFound(err)
	}
	return res, nil
}

// Cancel validates id, deletes the row, and returns the removed row so
// the RPC adapter's cancel response can echo back what was removed.
func (m *Manager) Cancel(ctx context.Context, id int64) (types.Reservation, error) {
	if err := validate.ID(id); err != nil {
		return types.Reservation{}, err
	}

	const stmt = `
DELETE FROM rsvp.reservations
WHERE id = $1
RETURNING id, user_id, resource_id, lower(timespan), upper(timespan), status, note`

	row := m.pool.QueryRow(ctx, stmt, id)
	res, err := scanReservation(row)
	if err != nil {
		return types.Reservation{}, m.classifyNotFound(err)
	}
	return res, nil
}

// Get validates id and returns the matching row, or NotFound.
func (m *Manager) Get(ctx context.Context, id int64) (types.Reservation, error) {
	if err := validate.ID(id); err != nil {
		return types.Reservation{}, err
	}

	const stmt = `
SELECT id, user_id, resource_id, lower(timespan), upper(timespan), status, note
FROM rsvp.reservations
WHERE id = $1`

	row := m.pool.QueryRow(ctx, stmt, id)
	res, err := scanReservation(row)
	if err != nil {
		return types.Reservation{}, m.classifyNotFound(err)
	}
	return res, nil
}

// queueDepth is the bounded channel capacity used for the streaming
// query path.
const queueDepth = 128

// QueryItem is one element of the channel Query returns: either a row
// or an error. Errors are forwarded inline rather than ending the
// stream; only the underlying cursor's own exhaustion, or the
// consumer abandoning the channel, closes it.
type QueryItem struct {
	Row types.Reservation
	Err error
}

// Query validates q and returns a channel fed by a detached goroutine
// reading from the storage engine. The channel is closed once the
// cursor is exhausted or ctx is cancelled, whichever happens first;
// a consumer that stops receiving relies on ctx cancellation (not a
// full channel) to stop the underlying goroutine, mirroring the
// cursor-lifecycle goroutine pattern of a detached reader that
// selects on ctx.Done() alongside its send.
func (m *Manager) Query(ctx context.Context, q types.ReservationQuery) (<-chan QueryItem, error) {
	norm, err := validate.NormalizeQuery(&q)
	if err != nil {
		return nil, err
	}

	plan := planner.Query(norm)
	rows, err := m.pool.Query(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return nil, m.classify(err)
	}

	out := make(chan QueryItem, queueDepth)
	go pumpQuery(ctx, rows, out)
	return out, nil
}

func pumpQuery(ctx context.Context, rows pgx.Rows, out chan<- QueryItem) {
	defer close(out)
	defer rows.Close()

	for rows.Next() {
		res, err := scanReservationRow(rows)
		item := QueryItem{Row: res, Err: err}
		queryRowsTotal.Inc()

		select {
		case out <- item:
		case <-ctx.Done():
			return
		}
		if err != nil {
			log.WithError(err).Warn("reservation query: failed to scan row")
		}
	}
	if err := rows.Err(); err != nil {
		select {
		case out <- QueryItem{Err: pkgerrors.Wrap(err, "reservation query cursor")}:
		case <-ctx.Done():
		}
	}
}

// Filter validates f, normalizes its status default, fetches one more
// row than requested, and returns the trimmed page plus adjacent-page
// cursors.
func (m *Manager) Filter(ctx context.Context, f types.ReservationFilter) ([]types.Reservation, types.FilterPager, error) {
	norm, err := validate.NormalizeFilter(&f)
	if err != nil {
		return nil, types.FilterPager{}, err
	}

	plan := planner.Filter(norm)
	rows, err := m.pool.Query(ctx, plan.SQL, plan.Args...)
	if err != nil {
		return nil, types.FilterPager{}, m.classify(err)
	}
	defer rows.Close()

	var data []types.Reservation
	for rows.Next() {
		res, err := scanReservationRow(rows)
		if err != nil {
			return nil, types.FilterPager{}, pkgerrors.Wrap(err, "reservation filter: scan row")
		}
		data = append(data, res)
	}
	if err := rows.Err(); err != nil {
		return nil, types.FilterPager{}, m.classify(err)
	}

	prev, next, trimmed := pager.Page(pager.Info{
		Cursor:   norm.Cursor,
		PageSize: norm.PageSize,
		Desc:     norm.Desc,
	}, data)

	return trimmed, types.FilterPager{Prev: prev, Next: next}, nil
}

// scanReservation reads the standard seven-column projection
// (id, user_id, resource_id, lower(timespan), upper(timespan), status,
// note) out of a single-row result.
func scanReservation(row pgx.Row) (types.Reservation, error) {
	var r types.Reservation
	err := row.Scan(&r.ID, &r.UserID, &r.ResourceID, &r.Start, &r.End, &r.Status, &r.Note)
	return r, err
}

// scanReservationRow is scanReservation's counterpart for a
// multi-row pgx.Rows cursor.
func scanReservationRow(rows pgx.Rows) (types.Reservation, error) {
	var r types.Reservation
	err := rows.Scan(&r.ID, &r.UserID, &r.ResourceID, &r.Start, &r.End, &r.Status, &r.Note)
	return r, err
}

// classify turns a raw driver error into an *rsvperr.Error. A
// violation of the (resource_id, timespan) exclusion constraint on
// rsvp.reservations becomes ConflictReservation with the conflicting
// windows parsed out of the driver's detail string; everything else
// becomes a wrapped DBError.
func (m *Manager) classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgErr.Code == exclusionConstraintCode &&
		pgErr.SchemaName == conflictSchema &&
		pgErr.TableName == conflictTable {

		conflictTotal.Inc()
		conflict, parseErr := rsvperr.ParseConflict(pgErr.Detail)
		if parseErr != nil {
			log.WithError(parseErr).Warn("reservation conflict: could not parse detail")
			return &rsvperr.Error{
				Kind:     rsvperr.ConflictReservation,
				Detail:   pgErr.Detail,
				Unparsed: &types.UnparsedConflict{Detail: pgErr.Detail},
			}
		}
		return &rsvperr.Error{Kind: rsvperr.ConflictReservation, Conflict: conflict}
	}

	return rsvperr.Wrap(pkgerrors.WithStack(err), "storage engine error")
}

// classifyNotFound is classify, specialized for the single-row
// UPDATE/DELETE/SELECT paths where the driver reports a missing row as
// pgx.ErrNoRows rather than as a distinguishable error code.
func (m *Manager) classifyNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return rsvperr.NotFoundf("reservation not found")
	}
	return m.classify(err)
}
