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

// Package rsvptest provides a per-test, isolated database: create,
// migrate, hand back a pool, and tear down on cleanup. Cleanup
// cascades through closures rather than a generated provider set,
// since this repository does not run a DI code generator.
package rsvptest

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// adminURLEnv names the environment variable holding a DSN with
// privileges to create and drop databases. Tests that need a live
// database are skipped when it is unset.
const adminURLEnv = "RESERVATION_TEST_DATABASE_URL"

// Fixture is a self-contained, isolated database for one test: its
// own freshly created database, migrated to the rsvp schema, with a
// pool open against it.
type Fixture struct {
	Pool *pgxpool.Pool

	adminPool *pgxpool.Pool
	dbName    string
}

// NewFixture creates a randomly named database, migrates it, and
// returns a Fixture plus a cleanup func that drops the pool and the
// database. Call via t.Cleanup(cleanup) or defer cleanup().
//
// Tests call this only under the same testing.Short()/env convention
// documented on RequireDB; NewFixture itself does not skip, so
// non-test callers (a future migration CLI) can also use it.
func NewFixture(ctx context.Context, adminURL string) (fixture *Fixture, cleanup func(), err error) {
	adminPool, err := pgxpool.New(ctx, adminURL)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening admin pool")
	}
	cleanupAdmin := adminPool.Close

	dbName, err := randomDBName()
	if err != nil {
		cleanupAdmin()
		return nil, nil, err
	}

	if _, err := adminPool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		cleanupAdmin()
		return nil, nil, errors.Wrapf(err, "creating database %s", dbName)
	}
	cleanupDB := func() {
		_, _ = adminPool.Exec(context.Background(), fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
	}

	testURL, err := replaceDBName(adminURL, dbName)
	if err != nil {
		cleanupDB()
		cleanupAdmin()
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, testURL)
	if err != nil {
		cleanupDB()
		cleanupAdmin()
		return nil, nil, errors.Wrap(err, "opening test pool")
	}
	cleanupPool := pool.Close

	if err := migrate(ctx, pool); err != nil {
		cleanupPool()
		cleanupDB()
		cleanupAdmin()
		return nil, nil, err
	}

	f := &Fixture{Pool: pool, adminPool: adminPool, dbName: dbName}
	return f, func() {
		cleanupPool()
		cleanupDB()
		cleanupAdmin()
	}, nil
}

// RequireDB skips t unless adminURLEnv is set, then returns a ready
// Fixture whose teardown is already registered via t.Cleanup.
func RequireDB(t *testing.T) *Fixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database-backed test in -short mode")
	}
	adminURL := os.Getenv(adminURLEnv)
	if adminURL == "" {
		t.Skipf("%s not set; skipping database-backed test", adminURLEnv)
	}

	f, cleanup, err := NewFixture(context.Background(), adminURL)
	if err != nil {
		t.Fatalf("building fixture: %v", err)
	}
	t.Cleanup(cleanup)
	return f
}

// replaceDBName substitutes dbName as the path component of a
// postgres:// connection URL, leaving host/user/query untouched.
func replaceDBName(dsn, dbName string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", errors.Wrapf(err, "parsing database URL")
	}
	u.Path = "/" + dbName
	return u.String(), nil
}

func randomDBName() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "generating random database name")
	}
	return "rsvptest_" + hex.EncodeToString(buf), nil
}

// migrationStatements builds the persisted schema: schema rsvp, table
// reservations, the reservation_status enum, the range-exclusion
// constraint that enforces the no-overlap invariant, and the
// rsvp.query/rsvp.filter functions the planner's generated SQL text
// calls. They run one at a time because pgx's extended protocol does
// not accept multiple statements in a single Exec.
var migrationStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS rsvp`,

	`CREATE TYPE rsvp.reservation_status AS ENUM ('unknown', 'pending', 'confirmed', 'blocked')`,

	`CREATE TABLE rsvp.reservations (
		id          BIGSERIAL PRIMARY KEY,
		user_id     TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		timespan    TSTZRANGE NOT NULL,
		status      rsvp.reservation_status NOT NULL DEFAULT 'pending',
		note        TEXT NOT NULL DEFAULT '',
		EXCLUDE USING gist (
			resource_id WITH =,
			timespan WITH &&
		) WHERE (status IN ('pending', 'confirmed'))
	)`,

	// rsvp.query and rsvp.filter are the persisted-schema functions the
	// planner's generated SQL text targets; an implementation could
	// inline the equivalent SQL instead, but this fixture stands them
	// up literally so the planner's call shape can be exercised
	// end-to-end against a real database.
	`CREATE FUNCTION rsvp.query(
		p_user_id text, p_resource_id text, p_status rsvp.reservation_status,
		p_start timestamptz, p_end timestamptz, p_desc boolean
	) RETURNS TABLE (
		id bigint, user_id text, resource_id text, timespan tstzrange,
		status rsvp.reservation_status, note text
	) AS $$
	BEGIN
		IF p_desc THEN
			RETURN QUERY
				SELECT r.id, r.user_id, r.resource_id, r.timespan, r.status, r.note
				FROM rsvp.reservations r
				WHERE (p_user_id IS NULL OR r.user_id = p_user_id)
					AND (p_resource_id IS NULL OR r.resource_id = p_resource_id)
					AND r.status = p_status
					AND r.timespan <@ tstzrange(p_start, p_end, '[]')
				ORDER BY lower(r.timespan) DESC;
		ELSE
			RETURN QUERY
				SELECT r.id, r.user_id, r.resource_id, r.timespan, r.status, r.note
				FROM rsvp.reservations r
				WHERE (p_user_id IS NULL OR r.user_id = p_user_id)
					AND (p_resource_id IS NULL OR r.resource_id = p_resource_id)
					AND r.status = p_status
					AND r.timespan <@ tstzrange(p_start, p_end, '[]')
				ORDER BY lower(r.timespan) ASC;
		END IF;
	END;
	$$ LANGUAGE plpgsql STABLE`,

	// rsvp.filter's cursor predicate is asymmetric by design:
	// ascending pages exclude the boundary row the caller already
	// holds (id > cursor), descending pages include it (id <=
	// cursor). See internal/planner for the fuller rationale.
	`CREATE FUNCTION rsvp.filter(
		p_user_id text, p_resource_id text, p_status rsvp.reservation_status,
		p_cursor bigint, p_limit int, p_desc boolean
	) RETURNS TABLE (
		id bigint, user_id text, resource_id text, timespan tstzrange,
		status rsvp.reservation_status, note text
	) AS $$
	BEGIN
		IF p_desc THEN
			RETURN QUERY
				SELECT r.id, r.user_id, r.resource_id, r.timespan, r.status, r.note
				FROM rsvp.reservations r
				WHERE (p_user_id IS NULL OR r.user_id = p_user_id)
					AND (p_resource_id IS NULL OR r.resource_id = p_resource_id)
					AND r.status = p_status
					AND r.id <= p_cursor
				ORDER BY r.id DESC
				LIMIT p_limit;
		ELSE
			RETURN QUERY
				SELECT r.id, r.user_id, r.resource_id, r.timespan, r.status, r.note
				FROM rsvp.reservations r
				WHERE (p_user_id IS NULL OR r.user_id = p_user_id)
					AND (p_resource_id IS NULL OR r.resource_id = p_resource_id)
					AND r.status = p_status
					AND r.id > p_cursor
				ORDER BY r.id ASC
				LIMIT p_limit;
		END IF;
	END;
	$$ LANGUAGE plpgsql STABLE`,
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrationStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "running migration statement")
		}
	}
	return nil
}
