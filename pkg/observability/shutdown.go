package observability

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// RunServer starts the HTTP server and blocks until SIGINT/SIGTERM, then
// drains in-flight requests for up to shutdownTimeout. Cleanup hooks run
// after the server has stopped accepting requests.
func RunServer(server *http.Server, logger *Logger, shutdownTimeout time.Duration, cleanup ...func()) error {
	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
		return err
	}

	for _, fn := range cleanup {
		fn()
	}

	logger.Info("server stopped")
	return nil
}
