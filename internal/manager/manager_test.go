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

package manager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laizhenxing/xreservation/internal/rsvperr"
	"github.com/laizhenxing/xreservation/internal/types"
)

// Reserve, ChangeStatus, UpdateNote, Cancel, and Get all validate
// before touching the pool; a nil pool proves these paths never reach
// storage on bad input.

func TestReserve_InvalidReservationNeverTouchesPool(t *testing.T) {
	m := New(nil)
	_, err := m.Reserve(context.Background(), types.Reservation{})

	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.InvalidUserID, rerr.Kind)
}

func TestChangeStatus_InvalidIDNeverTouchesPool(t *testing.T) {
	m := New(nil)
	_, err := m.ChangeStatus(context.Background(), 0)

	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.InvalidReservationID, rerr.Kind)
}

func TestGet_InvalidIDNeverTouchesPool(t *testing.T) {
	m := New(nil)
	_, err := m.Get(context.Background(), -5)

	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.InvalidReservationID, rerr.Kind)
}

func TestQuery_InvalidStatusNeverTouchesPool(t *testing.T) {
	m := New(nil)
	_, err := m.Query(context.Background(), types.ReservationQuery{Status: types.ReservationStatus(99)})

	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.InvalidStatus, rerr.Kind)
}

func TestFilter_InvalidPageSizeNeverTouchesPool(t *testing.T) {
	m := New(nil)
	_, _, err := m.Filter(context.Background(), types.ReservationFilter{PageSize: 1})

	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.InvalidPageSize, rerr.Kind)
}

// classify is exercised directly against a synthetic *pgconn.PgError,
// without a live connection, since pgconn.PgError is a plain value
// type the driver also constructs this way internally.

func TestClassify_ExclusionViolationParsesConflict(t *testing.T) {
	m := New(nil)
	pgErr := &pgconn.PgError{
		Code:       exclusionConstraintCode,
		SchemaName: conflictSchema,
		TableName:  conflictTable,
		Detail: `Key (resource_id, timespan)=(r1, ["2023-01-02 17:10:10+00","2023-01-05 17:10:10+00")) conflicts with existing key (resource_id, timespan)=(r1, ["2023-01-01 17:10:10+00","2023-01-04 17:10:10+00"))`,
	}

	err := m.classify(pgErr)
	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.ConflictReservation, rerr.Kind)
	require.NotNil(t, rerr.Conflict)
	assert.Equal(t, "r1", rerr.Conflict.New.ResourceID)
	assert.Equal(t, time.Date(2023, 1, 2, 17, 10, 10, 0, time.UTC), rerr.Conflict.New.Start)
	assert.Equal(t, "r1", rerr.Conflict.Old.ResourceID)
	assert.Equal(t, time.Date(2023, 1, 1, 17, 10, 10, 0, time.UTC), rerr.Conflict.Old.Start)
}

func TestClassify_ExclusionViolationOnOtherTableIsDBError(t *testing.T) {
	m := New(nil)
	pgErr := &pgconn.PgError{
		Code:       exclusionConstraintCode,
		SchemaName: "other",
		TableName:  "other_table",
		Detail:     "irrelevant",
	}

	err := m.classify(pgErr)
	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.DBError, rerr.Kind)
}

func TestClassify_UnparseableConflictDetailFallsBack(t *testing.T) {
	m := New(nil)
	pgErr := &pgconn.PgError{
		Code:       exclusionConstraintCode,
		SchemaName: conflictSchema,
		TableName:  conflictTable,
		Detail:     "not a recognizable detail string",
	}

	err := m.classify(pgErr)
	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.ConflictReservation, rerr.Kind)
	assert.Nil(t, rerr.Conflict)
	require.NotNil(t, rerr.Unparsed)
}

func TestClassify_OtherDriverErrorIsDBError(t *testing.T) {
	m := New(nil)
	err := m.classify(errors.New("connection reset"))

	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.DBError, rerr.Kind)
}

func TestClassifyNotFound_NoRowsBecomesNotFound(t *testing.T) {
	m := New(nil)
	err := m.classifyNotFound(pgx.ErrNoRows)

	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.NotFound, rerr.Kind)
}

func TestClassifyNotFound_OtherErrorFallsThroughToClassify(t *testing.T) {
	m := New(nil)
	err := m.classifyNotFound(errors.New("boom"))

	rerr, ok := rsvperr.AsRsvpError(err)
	require.True(t, ok)
	assert.Equal(t, rsvperr.DBError, rerr.Kind)
}
