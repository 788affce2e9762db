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

package server

import (
	"context"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/laizhenxing/xreservation/internal/manager"
	"github.com/laizhenxing/xreservation/internal/pb"
	"github.com/laizhenxing/xreservation/internal/rsvperr"
	"github.com/laizhenxing/xreservation/internal/types"
)

// reservationManager is the narrow surface Service needs from
// *manager.Manager; it lets tests substitute a fake without a live
// database.
type reservationManager interface {
	Reserve(ctx context.Context, r types.Reservation) (types.Reservation, error)
	ChangeStatus(ctx context.Context, id int64) (types.Reservation, error)
	UpdateNote(ctx context.Context, id int64, note string) (types.Reservation, error)
	Cancel(ctx context.Context, id int64) (types.Reservation, error)
	Get(ctx context.Context, id int64) (types.Reservation, error)
	Query(ctx context.Context, q types.ReservationQuery) (<-chan manager.QueryItem, error)
	Filter(ctx context.Context, f types.ReservationFilter) ([]types.Reservation, types.FilterPager, error)
}

// Service adapts the pb.Service contract to a reservationManager,
// translating domain errors to status codes and owning the channel ->
// stream adaptation for the query endpoint.
type Service struct {
	mgr reservationManager
}

// NewService constructs a Service bound to mgr.
func NewService(mgr *manager.Manager) *Service {
	return &Service{mgr: mgr}
}

var _ pb.Service = (*Service)(nil)

// Reserve requires req.Reservation to be present.
func (s *Service) Reserve(ctx context.Context, req pb.ReserveRequest) (pb.ReserveResponse, error) {
	if req.Reservation == nil {
		return pb.ReserveResponse{}, missingArgument("reservation")
	}
	r, err := s.mgr.Reserve(ctx, req.Reservation.ToReservation())
	if err != nil {
		return pb.ReserveResponse{}, toStatus(err)
	}
	return pb.ReserveResponse{Reservation: pb.FromReservation(r)}, nil
}

// Confirm calls manager.ChangeStatus(id).
func (s *Service) Confirm(ctx context.Context, req pb.ConfirmRequest) (pb.ConfirmResponse, error) {
	r, err := s.mgr.ChangeStatus(ctx, req.ID)
	if err != nil {
		return pb.ConfirmResponse{}, toStatus(err)
	}
	return pb.ConfirmResponse{Reservation: pb.FromReservation(r)}, nil
}

// Update calls manager.UpdateNote(id, note).
func (s *Service) Update(ctx context.Context, req pb.UpdateRequest) (pb.UpdateResponse, error) {
	r, err := s.mgr.UpdateNote(ctx, req.ID, req.Note)
	if err != nil {
		return pb.UpdateResponse{}, toStatus(err)
	}
	return pb.UpdateResponse{Reservation: pb.FromReservation(r)}, nil
}

// Cancel calls manager.Cancel(id) and echoes the removed row.
func (s *Service) Cancel(ctx context.Context, req pb.CancelRequest) (pb.CancelResponse, error) {
	r, err := s.mgr.Cancel(ctx, req.ID)
	if err != nil {
		return pb.CancelResponse{}, toStatus(err)
	}
	return pb.CancelResponse{Reservation: pb.FromReservation(r)}, nil
}

// Get calls manager.Get(id).
func (s *Service) Get(ctx context.Context, req pb.GetRequest) (pb.GetResponse, error) {
	r, err := s.mgr.Get(ctx, req.ID)
	if err != nil {
		return pb.GetResponse{}, toStatus(err)
	}
	return pb.GetResponse{Reservation: pb.FromReservation(r)}, nil
}

// Query requires req.Query to be present. It spawns the manager's
// channel-based reader and forwards every item to stream, exiting
// early if stream.Context() is cancelled: this is the adapter-side
// half of the channel->stream adaptation, the manager side being
// internal/manager.Manager.Query's own ctx-aware pump goroutine.
func (s *Service) Query(ctx context.Context, req pb.QueryRequest, stream pb.QueryStream) error {
	if req.Query == nil {
		return missingArgument("query")
	}

	items, err := s.mgr.Query(ctx, req.ToQuery())
	if err != nil {
		return toStatus(err)
	}

	for {
		select {
		case item, ok := <-items:
			if !ok {
				return nil
			}
			var msg pb.QueryResponse
			if item.Err != nil {
				msg.Err = item.Err
			} else {
				row := pb.FromReservation(item.Row)
				msg.Reservation = &row
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return stream.Context().Err()
		}
	}
}

// Filter requires req.Filter to be present.
func (s *Service) Filter(ctx context.Context, req pb.FilterRequest) (pb.FilterResponse, error) {
	if req.Filter == nil {
		return pb.FilterResponse{}, missingArgument("filter")
	}

	rows, pager, err := s.mgr.Filter(ctx, req.ToFilter())
	if err != nil {
		return pb.FilterResponse{}, toStatus(err)
	}
	return pb.FilterResponse{
		Pager:        pb.FromFilterPager(pager),
		Reservations: pb.FromReservations(rows),
	}, nil
}

// Listen is reserved: its wire contract exists but no change-feed
// implementation has been built yet.
func (s *Service) Listen(ctx context.Context, req pb.ListenRequest, stream interface {
	Send(pb.ListenResponse) error
}) error {
	return status.Error(codes.Unimplemented, "listen is reserved for a future change feed")
}

func missingArgument(name string) error {
	return status.Error(codes.InvalidArgument, rsvperr.New(rsvperr.MissingArgument, name).Error())
}

// toStatus maps an *rsvperr.Error to its RPC status code. Any error
// that is not a recognized *rsvperr.Error (such as the wrapped
// row-scan error manager.Filter returns) is logged and surfaced as
// Internal without leaking its message.
func toStatus(err error) error {
	rerr, ok := rsvperr.AsRsvpError(err)
	if !ok {
		log.WithError(err).Error("reservation service: unclassified error")
		return status.Error(codes.Internal, "internal error")
	}

	switch rerr.Kind {
	case rsvperr.InvalidTimespan, rsvperr.InvalidUserID, rsvperr.InvalidResourceID,
		rsvperr.InvalidReservationID, rsvperr.InvalidPageSize, rsvperr.InvalidCursor,
		rsvperr.InvalidStatus, rsvperr.MissingArgument:
		return status.Error(codes.InvalidArgument, rerr.Error())
	case rsvperr.NotFound:
		return status.Error(codes.NotFound, rerr.Error())
	case rsvperr.ConflictReservation:
		return status.Error(codes.AlreadyExists, rerr.Error())
	case rsvperr.ConfigReadError, rsvperr.ConfigParseError, rsvperr.DBError:
		return status.Error(codes.Internal, rerr.Error())
	default:
		return status.Error(codes.Internal, rerr.Error())
	}
}
