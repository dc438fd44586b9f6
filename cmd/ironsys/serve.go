package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/ironsys/internal/adapters/http/api"
	"github.com/okian/ironsys/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the leaderboard, team ranking, alerts and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	log := logger.Named("serve")
	table := a.cfg.Tables.Tournament

	a.refresh(ctx, log, table)

	// The loop must stop before the service is closed by the caller.
	loopCtx, stopLoop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.refreshLoop(loopCtx, log, table)
	}()
	defer func() {
		stopLoop()
		wg.Wait()
	}()

	mux := http.NewServeMux()
	api.NewServer(a.svc, api.WithMaxLimit(a.cfg.MaxLeaderboardLimit)).Register(ctx, mux)

	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", a.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

// refresh rescores the served table. A failed refresh keeps the previous
// read model.
func (a *app) refresh(ctx context.Context, log logger.Logger, table string) {
	if _, err := a.svc.RefreshLeaderboard(ctx, table); err != nil {
		log.Warn(ctx, "refresh failed", logger.String("table", table), logger.Error(err))
	}
}

func (a *app) refreshLoop(ctx context.Context, log logger.Logger, table string) {
	if a.cfg.RefreshInterval <= 0 {
		return
	}
	ticker := time.NewTicker(a.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.refresh(ctx, log, table)
		}
	}
}
