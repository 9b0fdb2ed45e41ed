package admin

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spravuz/spravbot/internal/gateway"
	"github.com/spravuz/spravbot/internal/store"
)

// StartOpts holds configuration for the operator console server.
type StartOpts struct {
	Store   *store.Store
	Gateway gateway.Gateway
	Port    int
	Out     io.Writer
}

// Start launches the operator console HTTP server. It blocks until ctx is
// cancelled, then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Store == nil {
		return fmt.Errorf("admin: store is required")
	}
	if opts.Gateway == nil {
		return fmt.Errorf("admin: gateway is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	workflow, err := NewWorkflow(opts.Store, opts.Gateway)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, opts.Store, workflow)

	addr := fmt.Sprintf(":%d", opts.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Operator console at http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("admin: %w", err)
	}
	return nil
}
