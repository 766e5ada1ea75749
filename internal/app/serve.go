package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/runnercheck/internal/domain"
	"github.com/hamed0406/runnercheck/internal/httpapi"
	apimw "github.com/hamed0406/runnercheck/internal/httpapi/middleware"
	"github.com/hamed0406/runnercheck/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

// Handler builds the API router over the container's stores and runner.
func (c *Container) Handler() http.Handler {
	scan := func(ctx context.Context) (*domain.ScanReport, error) {
		res, err := c.Runner.Run(ctx)
		return res.Report, err
	}
	srv := httpapi.NewServer(c.Logger, c.Catalog, c.Reports, scan)
	return srv.Router(httpapi.RouterOptions{
		Keys: apimw.Keys{
			Public: c.Config.PublicAPIKeys,
			Admin:  c.Config.AdminAPIKeys,
		},
		AllowedOrigins: c.Config.AllowedOrigins,
		PublicRPM:      c.Config.PublicRPM,
		PublicBurst:    c.Config.PublicBurst,
	})
}

// Serve runs the API and the periodic rescanner until ctx is cancelled.
func (c *Container) Serve(ctx context.Context) error {
	hs := &http.Server{
		Addr:              c.Config.Addr,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		scheduler.NewRescanner(c.Logger, c.Runner.Pass, c.Config.ScanInterval).Run(loopCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("api_listen", zap.String("addr", hs.Addr))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		cancel()
		<-loopDone
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("api_shutdown")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	err := hs.Shutdown(shutdownCtx)
	<-loopDone
	if err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}
