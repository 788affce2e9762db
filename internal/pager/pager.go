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

// Package pager implements the pagination primitive shared by every
// paged filter result: given a cursor/page-size request and the
// (possibly over-fetched) rows the planner returned, compute the
// prev/next cursors and trim the payload down to page size.
package pager

// Info is the caller's paging request: an optional cursor, the
// requested page size, and the ordering direction.
type Info struct {
	Cursor   *int64
	PageSize int32
	Desc     bool
}

// idItem is implemented by anything with an ID the pager can read off
// to compute a cursor.
type idItem interface {
	GetID() int64
}

// Page computes the FilterPager-shaped (prev, next) cursors for an
// ordered result set and returns the data trimmed to page size.
//
//   - prev echoes the request's own cursor iff one was supplied, else
//     nil: the caller hands the same value back to page backward.
//   - next = last(data).ID iff more than PageSize rows were returned,
//     else nil.
//   - total is never computed here; it is always nil.
//
// data must already be ordered according to info.Desc and must have
// been fetched with a limit of PageSize+1, exactly as internal/planner
// emits.
func Page[T idItem](info Info, data []T) (prev, next *int64, trimmed []T) {
	if info.Cursor != nil {
		c := *info.Cursor
		prev = &c
	}

	size := int(info.PageSize)
	if len(data) > size {
		id := data[size].GetID()
		next = &id
		data = data[:size]
	}

	return prev, next, data
}
