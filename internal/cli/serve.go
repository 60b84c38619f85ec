package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/demo"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	loamAdapter "github.com/aretw0/arbor/pkg/adapters/loam"
	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// backend is what the network servers share: one session manager whose
// containers all render the selected view.
type backend struct {
	sessions    *session.Manager
	views       ports.ViewLoader
	registry    *prometheus.Registry
	persistence *Persistence
}

func (b *backend) Close() error {
	return b.persistence.Close()
}

func newBackend(ctx context.Context, cfg *config.Config, opts RunOptions, logger *slog.Logger) (*backend, error) {
	b := &backend{registry: prometheus.NewRegistry()}
	metrics := observability.NewMetrics(b.registry)

	extra := []arbor.Option{arbor.WithLifecycleHooks(metrics.Hooks())}
	if !opts.Demo {
		loader, err := loamAdapter.Open(cfg.Views, loamAdapter.WithComponents(demo.Registry()))
		if err != nil {
			return nil, fmt.Errorf("failed to open views at %s: %w", cfg.Views, err)
		}
		b.views = loader
		extra = append(extra, arbor.WithLoader(loader))
	}

	p, err := OpenPersistence(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	b.persistence = p

	factory := func(ctx context.Context, id string) (runner.Target, error) {
		rt, _, err := createRuntime(cfg, opts, logger, slices.Concat(extra, []arbor.Option{arbor.WithName(id)})...)
		if err != nil {
			return nil, err
		}
		if _, err := scheduleRoot(ctx, rt, cfg, opts); err != nil {
			return nil, err
		}
		return rt, nil
	}

	sessOpts := []session.Option{session.WithLogger(logger)}
	if p.Locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(p.Locker))
	}
	b.sessions = session.NewManager(p.Store, factory, sessOpts...)
	return b, nil
}

// Serve exposes containers over HTTP until SIGINT or SIGTERM.
func Serve(opts RunOptions, port int) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if port == 0 {
		port = cfg.HTTP.Port
	}
	logger := createLogger(cfg.LogLevel, false)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	b, err := newBackend(sigCtx, cfg, opts, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	handler := httpAdapter.NewHandler(b.sessions,
		httpAdapter.WithViews(b.views),
		httpAdapter.WithLogger(logger),
		httpAdapter.WithGatherer(b.registry),
	)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting arbor server", "addr", srv.Addr, "views", cfg.Views, "backend", cfg.Snapshot.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-sigCtx.Done():
		logger.Info("Start shutdown", "signal", sigCtx.Signal())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Arbor server stopped gracefully")
		return nil
	}
}

// ServeMCP exposes containers as MCP tools over stdio or SSE.
func ServeMCP(opts RunOptions, transport string, port int) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if transport == "" {
		transport = cfg.MCP.Transport
	}
	if port == 0 {
		port = cfg.MCP.Port
	}
	// Stdout carries JSON-RPC; logs always go to stderr.
	logger := createLogger(cfg.LogLevel, false)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	b, err := newBackend(sigCtx, cfg, opts, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	srv := mcp.NewServer(b.sessions, mcp.WithViews(b.views), mcp.WithLogger(logger))

	switch transport {
	case "stdio":
		logger.Info("Starting arbor MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting arbor MCP Server (SSE)", "port", port)
		if err := srv.ServeSSE(sigCtx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
