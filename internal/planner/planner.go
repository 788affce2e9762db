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

// Package planner translates ReservationQuery/ReservationFilter
// messages into the parameterized calls to the persisted schema's
// rsvp.query and rsvp.filter functions persisted alongside the
// reservations table. For
// identical normalized inputs the planner always emits byte-identical
// SQL text and argument lists; that determinism is what lets callers
// compare plans by string equality in tests.
package planner

import (
	"math"
	"time"

	"github.com/laizhenxing/xreservation/internal/types"
)

// Plan is a parameterized SQL statement ready to hand to a
// types.Querier.
type Plan struct {
	SQL  string
	Args []interface{}
}

// negInfinity and posInfinity stand in for the absent time bounds in
// a ReservationQuery. rsvp.query treats these sentinels as -infinity
// and +infinity respectively.
var (
	negInfinity = time.Unix(0, 0).UTC().AddDate(-290000, 0, 0)
	posInfinity = time.Unix(0, 0).UTC().AddDate(290000, 0, 0)
)

// Query builds the Plan for a normalized ReservationQuery. The four
// user/resource cases (both set, user only, resource only, neither)
// are handled uniformly by passing NULL for the absent side; the
// rsvp.query function treats a NULL argument as "match any".
func Query(q types.ReservationQuery) Plan {
	start := negInfinity
	if q.Start != nil {
		start = *q.Start
	}
	end := posInfinity
	if q.End != nil {
		end = *q.End
	}

	return Plan{
		SQL: "SELECT id, user_id, resource_id, lower(timespan), upper(timespan), status, note " +
			"FROM rsvp.query($1, $2, $3, $4, $5, $6)",
		Args: []interface{}{
			nullable(q.UserID),
			nullable(q.ResourceID),
			q.Status,
			start,
			end,
			q.Desc,
		},
	}
}

// Filter builds the Plan for a normalized ReservationFilter. The
// cursor predicate is id > cursor for ascending pages (excludes the
// boundary row the caller has already seen) and id <= cursor for
// descending pages (includes it); see internal/pager for how these
// choices thread through to the prev/next computation. Absent cursor
// uses 0 for ascending and the maximum positive int64 for descending,
// which are no-ops against either predicate.
func Filter(f types.ReservationFilter) Plan {
	cursor := int64(0)
	if f.Desc {
		cursor = math.MaxInt64
	}
	if f.Cursor != nil {
		cursor = *f.Cursor
	}

	return Plan{
		SQL: "SELECT id, user_id, resource_id, lower(timespan), upper(timespan), status, note " +
			"FROM rsvp.filter($1, $2, $3, $4, $5, $6)",
		Args: []interface{}{
			nullable(f.UserID),
			nullable(f.ResourceID),
			f.Status,
			cursor,
			f.PageSize + 1,
			f.Desc,
		},
	}
}

// nullable turns an empty string into a nil argument so the
// driver sends SQL NULL instead of the literal empty string; "match
// any" in the persisted function is implemented as `col IS NULL OR
// col = arg`, not as an empty-string comparison.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
