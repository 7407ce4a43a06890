package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpadapter "github.com/aretw0/relay/pkg/adapters/http"
	mcpadapter "github.com/aretw0/relay/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// Serve exposes the app over HTTP on port until ctx is cancelled.
func Serve(ctx context.Context, app *App, port int) error {
	handler := httpadapter.NewHandler(app.Conversation, app.Orchestrator, app.Registry,
		httpadapter.WithLogger(app.Logger),
		httpadapter.WithRequestTimeout(app.Config.HTTP.RequestTimeout),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("HTTP server listening", "address", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		app.Logger.Info("shutting down HTTP server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

// ServeMCP exposes the app as an MCP server, over stdio when port is zero
// and over SSE otherwise.
func ServeMCP(ctx context.Context, app *App, port int) error {
	srv := mcpadapter.NewServer(app.Conversation, app.Orchestrator, app.Registry,
		mcpadapter.WithLogger(app.Logger),
	)
	if port > 0 {
		return srv.ServeSSE(ctx, port)
	}
	return srv.ServeStdio()
}
