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

// Package pb holds the wire-schema message shapes for the reservation
// RPC protocol and the Service interface a transport binds to. The
// codec/transport itself is an external collaborator referenced only
// through this interface contract: these types are the contract,
// hand-maintained rather than regenerated in this environment.
package pb

import (
	"time"

	"github.com/laizhenxing/xreservation/internal/types"
)

// ReservationMsg is the wire shape of types.Reservation.
type ReservationMsg struct {
	ID         int64
	UserID     string
	ResourceID string
	Start      time.Time
	End        time.Time
	Status     types.ReservationStatus
	Note       string
}

// FromReservation converts the internal domain type to its wire
// shape.
func FromReservation(r types.Reservation) ReservationMsg {
	return ReservationMsg{
		ID:         r.ID,
		UserID:     r.UserID,
		ResourceID: r.ResourceID,
		Start:      r.Start,
		End:        r.End,
		Status:     r.Status,
		Note:       r.Note,
	}
}

// ToReservation converts a wire message back to the internal domain
// type.
func (m ReservationMsg) ToReservation() types.Reservation {
	return types.Reservation{
		ID:         m.ID,
		UserID:     m.UserID,
		ResourceID: m.ResourceID,
		Start:      m.Start,
		End:        m.End,
		Status:     m.Status,
		Note:       m.Note,
	}
}

// ReserveRequest requires Reservation to be present; an absent
// Reservation is rejected by the adapter with MissingArgument before
// reaching the manager.
type ReserveRequest struct {
	Reservation *ReservationMsg
}

// ReserveResponse wraps the created row.
type ReserveResponse struct {
	Reservation ReservationMsg
}

// ConfirmRequest carries the id to move from pending to confirmed.
type ConfirmRequest struct {
	ID int64
}

// ConfirmResponse wraps the updated row.
type ConfirmResponse struct {
	Reservation ReservationMsg
}

// UpdateRequest carries the id and the new note text.
type UpdateRequest struct {
	ID   int64
	Note string
}

// UpdateResponse wraps the updated row.
type UpdateResponse struct {
	Reservation ReservationMsg
}

// CancelRequest carries the id to remove.
type CancelRequest struct {
	ID int64
}

// CancelResponse wraps the removed row rather than a unit response.
type CancelResponse struct {
	Reservation ReservationMsg
}

// GetRequest carries the id to look up.
type GetRequest struct {
	ID int64
}

// GetResponse wraps the matched row.
type GetResponse struct {
	Reservation ReservationMsg
}

// QueryRequestMsg is the wire shape of types.ReservationQuery. Query
// requires a non-nil Query sub-message, mirroring FilterRequest.
type QueryRequestMsg struct {
	UserID     string
	ResourceID string
	Status     types.ReservationStatus
	Start      *time.Time
	End        *time.Time
	Desc       bool
}

func (m QueryRequestMsg) toQuery() types.ReservationQuery {
	return types.ReservationQuery{
		UserID:     m.UserID,
		ResourceID: m.ResourceID,
		Status:     m.Status,
		Start:      m.Start,
		End:        m.End,
		Desc:       m.Desc,
	}
}

// QueryRequest requires Query to be present.
type QueryRequest struct {
	Query *QueryRequestMsg
}

// ToQuery converts the required sub-message to the internal query
// type. Callers must have already checked Query is non-nil.
func (r QueryRequest) ToQuery() types.ReservationQuery {
	return r.Query.toQuery()
}

// QueryResponse is one item of the server-streaming query response:
// either a row or an error, forwarded as-is from the manager's
// QueryItem.
type QueryResponse struct {
	Reservation *ReservationMsg
	Err         error
}

// FilterRequestMsg is the wire shape of types.ReservationFilter.
type FilterRequestMsg struct {
	UserID     string
	ResourceID string
	Status     types.ReservationStatus
	Cursor     *int64
	PageSize   int32
	Desc       bool
}

func (m FilterRequestMsg) toFilter() types.ReservationFilter {
	return types.ReservationFilter{
		UserID:     m.UserID,
		ResourceID: m.ResourceID,
		Status:     m.Status,
		Cursor:     m.Cursor,
		PageSize:   m.PageSize,
		Desc:       m.Desc,
	}
}

// FilterRequest requires Filter to be present.
type FilterRequest struct {
	Filter *FilterRequestMsg
}

// ToFilter converts the required sub-message to the internal filter
// type. Callers must have already checked Filter is non-nil.
func (r FilterRequest) ToFilter() types.ReservationFilter {
	return r.Filter.toFilter()
}

// FilterPagerMsg is the wire shape of types.FilterPager.
type FilterPagerMsg struct {
	Prev  *int64
	Next  *int64
	Total *int64
}

// FromFilterPager converts the internal pager to its wire shape.
func FromFilterPager(p types.FilterPager) FilterPagerMsg {
	return FilterPagerMsg{Prev: p.Prev, Next: p.Next, Total: p.Total}
}

// FilterResponse wraps the page and its adjacent-page pager.
type FilterResponse struct {
	Pager        FilterPagerMsg
	Reservations []ReservationMsg
}

// ListenRequest is reserved for the change-feed hook; it carries no
// fields because the feed is not implemented.
type ListenRequest struct{}

// ListenResponse is reserved for the change-feed hook.
type ListenResponse struct {
	UpdateType  types.ReservationUpdateTypeKind
	Reservation ReservationMsg
}

// FromReservations converts a slice of domain rows to their wire
// shape, preserving order.
func FromReservations(rows []types.Reservation) []ReservationMsg {
	out := make([]ReservationMsg, len(rows))
	for i, r := range rows {
		out[i] = FromReservation(r)
	}
	return out
}
