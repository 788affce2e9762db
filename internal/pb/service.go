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

package pb

import "context"

// QueryStream is the sender half of the query server-streaming
// response: the adapter calls Send once per row (or per inline error)
// and the transport delivers it to the client.
type QueryStream interface {
	Send(QueryResponse) error
	Context() context.Context
}

// Service is the RPC surface the reservation protocol exposes. A
// transport binding (internal/server) implements the
// generated-server-stub role by adapting inbound calls to these
// methods; this repository does not reproduce a protoc-generated
// transport, only the method contract it would bind to.
type Service interface {
	Reserve(ctx context.Context, req ReserveRequest) (ReserveResponse, error)
	Confirm(ctx context.Context, req ConfirmRequest) (ConfirmResponse, error)
	Update(ctx context.Context, req UpdateRequest) (UpdateResponse, error)
	Cancel(ctx context.Context, req CancelRequest) (CancelResponse, error)
	Get(ctx context.Context, req GetRequest) (GetResponse, error)
	Query(ctx context.Context, req QueryRequest, stream QueryStream) error
	Filter(ctx context.Context, req FilterRequest) (FilterResponse, error)
	Listen(ctx context.Context, req ListenRequest, stream interface {
		Send(ListenResponse) error
	}) error
}
