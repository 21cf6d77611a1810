/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/otel-demo/pkg/logger"
)

var errNoServers = errors.New("no servers configured")

const defaultServerShutdownTimeout = 10 * time.Second

// ServerOptions describes the HTTP servers RunServer manages.
type ServerOptions struct {
	ServiceName     string
	Servers         []*http.Server
	Logger          logger.Logger
	ShutdownTimeout time.Duration
	// OnReady receives the bound addresses, in Servers order, once listening.
	OnReady func(addrs []net.Addr)
	// OnShutdown runs after every server has stopped.
	OnShutdown func(ctx context.Context) error
}

// RunServer binds every server, serves until ctx is cancelled or SIGINT /
// SIGTERM arrives, then shuts them down gracefully. A server failing to serve
// stops the others.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	if len(opts.Servers) == 0 {
		return errNoServers
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultServerShutdownTimeout
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listeners := make([]net.Listener, 0, len(opts.Servers))
	addrs := make([]net.Addr, 0, len(opts.Servers))

	for _, srv := range opts.Servers {
		var lc net.ListenConfig

		ln, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			for _, open := range listeners {
				_ = open.Close()
			}

			return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
		}

		listeners = append(listeners, ln)
		addrs = append(addrs, ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)

	for i, srv := range opts.Servers {
		ln := listeners[i]

		g.Go(func() error {
			log.Info().Str("service", opts.ServiceName).Str("addr", ln.Addr().String()).Msg("Starting HTTP server")

			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server on %s failed: %w", ln.Addr(), err)
			}

			return nil
		})
	}

	if opts.OnReady != nil {
		opts.OnReady(addrs)
	}

	g.Go(func() error {
		<-gctx.Done()

		log.Info().Str("service", opts.ServiceName).Msg("Shutting down HTTP servers")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()

		var errs []error

		for _, srv := range opts.Servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}

		return errors.Join(errs...)
	})

	err := g.Wait()

	if opts.OnShutdown != nil {
		err = errors.Join(err, opts.OnShutdown(context.WithoutCancel(ctx)))
	}

	return err
}
