package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
)

// HTTPServer matches the *fiber.App lifecycle methods.
type HTTPServer interface {
	Listen(addr string, config ...fiber.ListenConfig) error
	ShutdownWithContext(ctx context.Context) error
}

// HTTPServerService runs a Fiber app as a supervised service. Listen runs
// in a goroutine; on cancellation the app is shut down within the timeout.
type HTTPServerService struct {
	server          HTTPServer
	addr            string
	listenConfig    fiber.ListenConfig
	shutdownTimeout time.Duration
	name            string
}

func NewHTTPServerService(server HTTPServer, addr string, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		addr:            addr,
		listenConfig:    fiber.ListenConfig{DisableStartupMessage: true},
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.server.Listen(h.addr, h.listenConfig)
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// the parent context is already canceled
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPServerService) String() string {
	return h.name
}
