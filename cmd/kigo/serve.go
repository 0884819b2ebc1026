package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kigopro/kigo/internal/assistant"
	"github.com/kigopro/kigo/internal/config"
	"github.com/kigopro/kigo/internal/events"
	"github.com/kigopro/kigo/internal/fixtures"
	"github.com/kigopro/kigo/internal/server"
	"github.com/kigopro/kigo/internal/store"
	"github.com/kigopro/kigo/internal/store/memory"
	"github.com/kigopro/kigo/internal/store/postgres"
	kigosync "github.com/kigopro/kigo/internal/sync"
)

// openStore connects to Postgres when a database URL is configured and
// otherwise returns an in-memory store seeded with the demo fixtures.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	s := memory.New(time.Now)
	if err := fixtures.Seed(ctx, s, fixtures.Load(time.Now())); err != nil {
		return nil, fmt.Errorf("seeding in-memory store: %w", err)
	}
	logger.Info("using in-memory store with demo data (KIGO_DATABASE_URL not set)")
	return s, nil
}

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the Kigo HTTP and gRPC server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create a client connection.
	PersistentPreRunE: noClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
		slog.SetDefault(logger)

		st, err := openStore(context.Background(), cfg, logger)
		if err != nil {
			return err
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = events.NoopPublisher{}
			logger.Info("events disabled (KIGO_NATS_URL not set)")
		}

		kigoServer := server.NewKigoServer(st, publisher, server.Options{
			DefaultPageSize: cfg.DefaultPageSize,
			MaxPageSize:     cfg.MaxPageSize,
		})
		kigoServer.Assistant.StartReaper(assistant.ReaperConfig{
			IdleAfter: cfg.SessionIdle,
			OnExpire: func(id string) {
				logger.Debug("assistant session expired", "session", id)
			},
		})
		grpcServer := server.NewGRPCServer(kigoServer, cfg.AuthToken)
		if cfg.AuthToken == "" {
			logger.Warn("authentication disabled (KIGO_AUTH_TOKEN not set)")
		}

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			publisher.Close()
			st.Close()
			return err
		}
		go func() {
			logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "err", err)
			}
		}()

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           server.RequestLogger(kigoServer.NewHTTPHandler(cfg.AuthToken)),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		scheduler := startSync(cfg, st, logger)

		logger.Info("kigo server started", "grpc_addr", cfg.GRPCAddr, "http_addr", cfg.HTTPAddr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		if scheduler != nil {
			scheduler.Stop()
			logger.Info("sync scheduler stopped")
		}
		kigoServer.Assistant.Stop()

		grpcServer.GracefulStop()
		logger.Info("gRPC server stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}
		logger.Info("shutdown complete")
		return nil
	},
}

// startSync starts the export scheduler when an interval and at least one
// destination are configured.
func startSync(cfg *config.Config, st store.Store, logger *slog.Logger) *kigosync.Scheduler {
	if cfg.SyncInterval <= 0 {
		return nil
	}
	var dests []kigosync.Destination
	if cfg.SyncS3Bucket != "" {
		d, err := kigosync.NewS3Destination(context.Background(), cfg.SyncS3Bucket, cfg.SyncS3Prefix, cfg.SyncS3Region, cfg.SyncS3Endpoint)
		if err != nil {
			logger.Error("failed to create S3 sync destination", "err", err)
		} else {
			dests = append(dests, d)
			logger.Info("sync S3 destination enabled", "bucket", cfg.SyncS3Bucket, "prefix", cfg.SyncS3Prefix)
		}
	}
	if cfg.SyncGitRepo != "" {
		dests = append(dests, kigosync.NewGitDestination(cfg.SyncGitRepo, cfg.SyncGitPath, cfg.SyncGitBranch))
		logger.Info("sync git destination enabled", "repo", cfg.SyncGitRepo, "file", cfg.SyncGitPath)
	}
	if len(dests) == 0 {
		return nil
	}
	s := kigosync.NewScheduler(st, dests, cfg.SyncInterval, logger)
	s.Start()
	logger.Info("sync scheduler started", "interval", cfg.SyncInterval)
	return s
}
