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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/laizhenxing/xreservation/internal/manager"
	"github.com/laizhenxing/xreservation/internal/pb"
	"github.com/laizhenxing/xreservation/internal/rsvperr"
	"github.com/laizhenxing/xreservation/internal/types"
)

type fakeManager struct {
	reserveFn func(context.Context, types.Reservation) (types.Reservation, error)
	getFn     func(context.Context, int64) (types.Reservation, error)
	queryFn   func(context.Context, types.ReservationQuery) (<-chan manager.QueryItem, error)
	filterFn  func(context.Context, types.ReservationFilter) ([]types.Reservation, types.FilterPager, error)
}

func (f *fakeManager) Reserve(ctx context.Context, r types.Reservation) (types.Reservation, error) {
	return f.reserveFn(ctx, r)
}
func (f *fakeManager) ChangeStatus(context.Context, int64) (types.Reservation, error) {
	return types.Reservation{}, nil
}
func (f *fakeManager) UpdateNote(context.Context, int64, string) (types.Reservation, error) {
	return types.Reservation{}, nil
}
func (f *fakeManager) Cancel(context.Context, int64) (types.Reservation, error) {
	return types.Reservation{}, nil
}
func (f *fakeManager) Get(ctx context.Context, id int64) (types.Reservation, error) {
	return f.getFn(ctx, id)
}
func (f *fakeManager) Query(ctx context.Context, q types.ReservationQuery) (<-chan manager.QueryItem, error) {
	return f.queryFn(ctx, q)
}
func (f *fakeManager) Filter(ctx context.Context, flt types.ReservationFilter) ([]types.Reservation, types.FilterPager, error) {
	return f.filterFn(ctx, flt)
}

type fakeStream struct {
	ctx  context.Context
	sent []pb.QueryResponse
}

func (s *fakeStream) Send(r pb.QueryResponse) error {
	s.sent = append(s.sent, r)
	return nil
}
func (s *fakeStream) Context() context.Context { return s.ctx }

func TestReserve_MissingReservationIsInvalidArgument(t *testing.T) {
	svc := &Service{mgr: &fakeManager{}}
	_, err := svc.Reserve(context.Background(), pb.ReserveRequest{})

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestReserve_ConflictMapsToAlreadyExists(t *testing.T) {
	svc := &Service{mgr: &fakeManager{
		reserveFn: func(context.Context, types.Reservation) (types.Reservation, error) {
			return types.Reservation{}, &rsvperr.Error{Kind: rsvperr.ConflictReservation}
		},
	}}
	msg := pb.FromReservation(types.Reservation{UserID: "u", ResourceID: "r"})
	_, err := svc.Reserve(context.Background(), pb.ReserveRequest{Reservation: &msg})

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.AlreadyExists, st.Code())
}

func TestGet_NotFoundMapsToNotFound(t *testing.T) {
	svc := &Service{mgr: &fakeManager{
		getFn: func(context.Context, int64) (types.Reservation, error) {
			return types.Reservation{}, rsvperr.NotFoundf("nope")
		},
	}}
	_, err := svc.Get(context.Background(), pb.GetRequest{ID: 1})

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.NotFound, st.Code())
}

func TestQuery_MissingQueryIsInvalidArgument(t *testing.T) {
	svc := &Service{mgr: &fakeManager{}}
	err := svc.Query(context.Background(), pb.QueryRequest{}, &fakeStream{ctx: context.Background()})

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestQuery_ForwardsItemsUntilChannelCloses(t *testing.T) {
	ch := make(chan manager.QueryItem, 2)
	ch <- manager.QueryItem{Row: types.Reservation{ID: 1}}
	ch <- manager.QueryItem{Err: assert.AnError}
	close(ch)

	svc := &Service{mgr: &fakeManager{
		queryFn: func(context.Context, types.ReservationQuery) (<-chan manager.QueryItem, error) {
			return ch, nil
		},
	}}

	stream := &fakeStream{ctx: context.Background()}
	err := svc.Query(context.Background(), pb.QueryRequest{Query: &pb.QueryRequestMsg{}}, stream)
	require.NoError(t, err)
	require.Len(t, stream.sent, 2)
	assert.Equal(t, int64(1), stream.sent[0].Reservation.ID)
	assert.Equal(t, assert.AnError, stream.sent[1].Err)
}

func TestQuery_StopsOnStreamContextCancellation(t *testing.T) {
	ch := make(chan manager.QueryItem)
	svc := &Service{mgr: &fakeManager{
		queryFn: func(context.Context, types.ReservationQuery) (<-chan manager.QueryItem, error) {
			return ch, nil
		},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stream := &fakeStream{ctx: ctx}
	err := svc.Query(context.Background(), pb.QueryRequest{Query: &pb.QueryRequestMsg{}}, stream)
	assert.Error(t, err)
}

func TestFilter_MissingFilterIsInvalidArgument(t *testing.T) {
	svc := &Service{mgr: &fakeManager{}}
	_, err := svc.Filter(context.Background(), pb.FilterRequest{})

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestListen_Unimplemented(t *testing.T) {
	svc := &Service{}
	err := svc.Listen(context.Background(), pb.ListenRequest{}, nil)

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.Unimplemented, st.Code())
}
