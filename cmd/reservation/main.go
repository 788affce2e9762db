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

// Command reservation is the process entry point: it locates and
// loads the YAML config, opens the connection pool, binds the RPC
// service adapter, and serves until terminated. The config file
// loader and the RPC codec/transport are external collaborators
// referenced only through their interface contracts; this file wires
// them together without reproducing their internals.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"

	"github.com/laizhenxing/xreservation/internal/manager"
	rsvpserver "github.com/laizhenxing/xreservation/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Error("reservation: fatal startup error")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path, err := rsvpserver.Locate()
	if err != nil {
		return err
	}
	cfg, err := rsvpserver.Load(path)
	if err != nil {
		return err
	}
	log.WithField("config", path).Info("reservation: loaded config")

	pool, err := openPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	mgr := manager.New(pool)
	service := rsvpserver.NewService(mgr)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	if err != nil {
		return err
	}

	// grpc.NewServer is started here as the bind point for the
	// generated transport stub; the stub's own
	// Register<Name>ServiceServer call is generated by protoc and is
	// intentionally not reproduced here:
	//
	//   pb.RegisterReservationServiceServer(grpcServer, service)
	grpcServer := grpc.NewServer()
	_ = service

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", lis.Addr().String()).Info("reservation: serving")
		errCh <- grpcServer.Serve(lis)
	}()

	stopMetrics := maybeServeMetrics(cfg)
	defer stopMetrics()

	select {
	case <-ctx.Done():
		log.Info("reservation: shutting down")
		grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

func openPool(ctx context.Context, dbc rsvpserver.DBConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?pool_max_conns=%d",
		dbc.User, dbc.Password, dbc.Host, dbc.Port, dbc.DBName, dbc.MaxConns)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// maybeServeMetrics starts a /metrics listener on the server host at
// the port after the RPC port; returns a no-op cleanup when no server
// host is set.
func maybeServeMetrics(cfg rsvpserver.Config) func() {
	if cfg.Server.Host == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port+1), Handler: mux}

	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("reservation: metrics listener stopped")
		}
	}()

	return func() { _ = metricsSrv.Close() }
}
