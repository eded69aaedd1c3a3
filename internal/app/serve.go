package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"letterbox/internal/httpapi"
	"letterbox/internal/lb"
	"letterbox/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// Handler builds the HTTP API. Photos in a filesystem store are also served under /photos/letters/.
func (a *LBApp) Handler() http.Handler {
	opts := httpapi.Options{MaxUploadSize: a.cfg.Server.MaxUploadSize}
	if fsStore, ok := a.store.(*storage.FileSystemStore); ok {
		opts.PhotoDir = fsStore.Root()
	}
	return httpapi.NewServer(a.service, a.logger, lb.RealClock{}, opts).Handler()
}

// Serve runs the HTTP API on the configured address until ctx is cancelled,
// then drains in-flight requests and notification dispatches.
func (a *LBApp) Serve(ctx context.Context) error {
	if err := a.store.ValidateSetup(ctx); err != nil {
		return fmt.Errorf("attachment store not usable: %w", err)
	}

	ln, err := net.Listen("tcp", a.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Server.Addr, err)
	}
	return a.serve(ctx, ln)
}

func (a *LBApp) serve(ctx context.Context, ln net.Listener) error {
	if err := a.persistOperation(ctx, ln.Addr().String()); err != nil {
		ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	a.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return a.track(fmt.Errorf("serving: %w", err))
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return a.track(fmt.Errorf("shutting down server: %w", err))
	}
	a.service.Wait()
	return nil
}
