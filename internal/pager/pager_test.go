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

package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct{ id int64 }

func (r fakeRow) GetID() int64 { return r.id }

func rows(ids ...int64) []fakeRow {
	out := make([]fakeRow, len(ids))
	for i, id := range ids {
		out[i] = fakeRow{id: id}
	}
	return out
}

func ids(rows []fakeRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

func TestPage_NoCursorNoOverflow(t *testing.T) {
	prev, next, trimmed := Page(Info{PageSize: 10}, rows(1, 2, 3))
	assert.Nil(t, prev)
	assert.Nil(t, next)
	assert.Equal(t, []int64{1, 2, 3}, ids(trimmed))
}

func TestPage_NoCursorWithOverflow(t *testing.T) {
	prev, next, trimmed := Page(Info{PageSize: 3}, rows(1, 2, 3, 4))
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, int64(4), *next)
	assert.Equal(t, []int64{1, 2, 3}, ids(trimmed))
}

// TestPage_FilterPagingAscending: 10 rows with ids 1..10, cursor=4,
// page_size=10 returns rows 5..10 with
// prev=4, next=none. The planner's asc cursor predicate is exclusive
// (id > cursor), so the fetched data never contains the boundary row;
// rsvp.filter in internal/rsvptest implements that predicate, and
// TestFilter_Paging in internal/manager runs it against a database.
func TestPage_FilterPagingAscending(t *testing.T) {
	cursor := int64(4)
	prev, next, trimmed := Page(Info{Cursor: &cursor, PageSize: 10}, rows(5, 6, 7, 8, 9, 10))
	require.NotNil(t, prev)
	assert.Equal(t, int64(4), *prev)
	assert.Nil(t, next)
	assert.Equal(t, []int64{5, 6, 7, 8, 9, 10}, ids(trimmed))
}

// TestPage_FilterPagingDescending: cursor=4, page_size=10, desc=true
// returns rows 4..1 with prev=4,
// next=none. The planner's desc cursor predicate is inclusive
// (id <= cursor), so the boundary row is legitimately part of the
// result.
func TestPage_FilterPagingDescending(t *testing.T) {
	cursor := int64(4)
	prev, next, trimmed := Page(Info{Cursor: &cursor, PageSize: 10, Desc: true}, rows(4, 3, 2, 1))
	require.NotNil(t, prev)
	assert.Equal(t, int64(4), *prev)
	assert.Nil(t, next)
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(trimmed))
}
