package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/sift"
	"github.com/aretw0/sift/internal/presentation/tui"
	httpAdapter "github.com/aretw0/sift/pkg/adapters/http"
	"github.com/aretw0/sift/pkg/openapi"
	"github.com/aretw0/sift/pkg/ports"
)

// ServeOptions configures Serve.
type ServeOptions struct {
	Port   string
	Banner bool
}

// NewHandler builds the HTTP API for the session.
func NewHandler(s *Session) http.Handler {
	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(s.Logger),
		httpAdapter.WithInfo(openapi.Info{Title: "sift", Version: strings.TrimSpace(sift.Version)}),
	}
	if m := s.Validator.Metrics(); m != nil {
		opts = append(opts, httpAdapter.WithMetrics(m.Handler()))
	}
	return httpAdapter.NewHandler(s.Validator.Catalog(), opts...)
}

// Serve runs the HTTP API until ctx is done. Watchable stores are followed
// so edited definitions are served without a restart.
func Serve(ctx context.Context, s *Session, opts ServeOptions, out io.Writer) error {
	srv := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           NewHandler(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if _, ok := s.Validator.Store().(ports.Watchable); ok {
		lifecycle.Go(ctx, func(ctx context.Context) error {
			if err := s.Validator.Follow(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.Logger.Error("Hot reload stopped", "error", err)
			}
			return nil
		})
	}

	serverErrors := make(chan error, 1)
	go func() {
		if opts.Banner {
			tui.PrintBanner(out)
		}
		fmt.Fprintf(out, "Starting sift server on %s (%d schemas)\n", srv.Addr, s.Validator.Catalog().Len())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		fmt.Fprintln(out, "\nShutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		fmt.Fprintln(out, "sift server stopped gracefully")
		return nil
	}
}
