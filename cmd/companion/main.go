// Command companion serves the client core to a browser front end: a JSON
// API, a WebSocket feed of notifications and navigation, Prometheus metrics
// and a gRPC health endpoint.
package main

import (
	"context"
	"errors"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-agent-character-demo/client/internal/notify"
	"ai-agent-character-demo/client/internal/server"
	"ai-agent-character-demo/client/pkg/config"
	"ai-agent-character-demo/client/pkg/di"
	"ai-agent-character-demo/client/pkg/observability"
	"ai-agent-character-demo/client/pkg/router"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	log, err := di.Bootstrap(cfg)
	if err != nil {
		log.LogError(err, "Failed to bootstrap")
		os.Exit(1)
	}

	log.Info("Starting companion", "version", os.Getenv("APP_VERSION"), "backend", cfg.API.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.TracingEnabled {
		shutdownTracing, err := observability.SetupTracing(cfg.Observability.ServiceName, os.Stdout)
		if err != nil {
			log.LogError(err, "Failed to set up tracing")
			os.Exit(1)
		}
		defer shutdownTracing(context.Background())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	hub := notify.NewHub(log, cfg.Server.AllowedOrigins)

	container, err := di.New(ctx, cfg, log, di.Options{Hub: hub, Registry: registry})
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}
	defer container.Close(context.Background())

	// A stale token is purged here; the server starts either way
	if err := container.Session.Init(ctx); err != nil {
		log.LogError(err, "Failed to restore session")
	}
	log.Info("Session restored", "state", container.Session.State().String())

	r := router.New(ctx, container)
	if err := r.SetupRoutes(); err != nil {
		log.LogError(err, "Failed to set up routes")
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer, _ := server.NewGRPCServer(container.Health)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	container.Health.Start(gctx)

	g.Go(func() error {
		log.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", net.JoinHostPort(cfg.Server.Host, cfg.Server.GRPCPort))
		if err != nil {
			return err
		}
		log.Info("gRPC health server listening", "addr", lis.Addr().String())
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.LogError(err, "Server stopped with error")
		os.Exit(1)
	}

	log.Info("Server exited gracefully")
}
