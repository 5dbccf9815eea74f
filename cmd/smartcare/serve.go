package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartcare/smartcare-api/internal/api"
	"github.com/smartcare/smartcare-api/internal/api/handler"
	"github.com/smartcare/smartcare-api/internal/infrastructure/scheduler"
	"github.com/smartcare/smartcare-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	sched := scheduler.New(ctx, a.simulation, a.cfg.Simulation.AutoInterval, logger.Component("scheduler"))
	defer sched.Close()

	checks := map[string]handler.Check{
		"mongodb": func(ctx context.Context) error { return a.mongo.Ping(ctx, nil) },
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}

	e := api.NewRouter(api.Services{
		Auth:       a.authSvc,
		Simulation: a.simulation,
		Auto:       sched,
		Vitals:     a.vitalsSvc,
		Link:       a.linkSvc,
		Bmi:        a.bmiSvc,
	}, api.Options{
		JWTSecret:    a.cfg.JWTSecret,
		RequireAuth:  a.cfg.RequireAuth,
		CORSOrigins:  a.cfg.CORSOrigins,
		AutoInterval: a.cfg.Simulation.AutoInterval,
		Checks:       checks,
		Log:          logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + a.cfg.Port
		a.log.Info().Str("addr", addr).Bool("require_auth", a.cfg.RequireAuth).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			a.log.Error().Err(err).Msg("server error")
			return err
		}
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sched.Close()
	if err := e.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	a.log.Info().Msg("server stopped")
	return nil
}
