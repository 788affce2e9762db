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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var latencyBuckets = []float64{.001, .002, .005, .01, .02, .05, .1, .2, .5, 1, 2, 5}

var (
	reserveDurations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reservation_reserve_duration_seconds",
		Help:    "the length of time a reserve call took, including conflicts",
		Buckets: latencyBuckets,
	})
	reserveTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservation_reserve_total",
		Help: "the number of reservations successfully created",
	})
	conflictTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservation_conflict_total",
		Help: "the number of reserve calls rejected by the overlap invariant",
	})
	queryRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservation_query_rows_total",
		Help: "the number of rows streamed out of query calls",
	})
)

// timer starts a histogram observation and returns a func that records
// the elapsed time, in seconds, into h. h is a plain histogram with no
// label dimension.
func timer(h prometheus.Histogram) func() {
	start := time.Now()
	return func() { h.Observe(time.Since(start).Seconds()) }
}
