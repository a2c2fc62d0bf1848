package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	apirepository "ctchen222/Hotseat-Tic-Tac-Toe/internal/api/repository"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/api/service"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/config"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/db"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/hub"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/logger"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/match"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/repository"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/server"
	"ctchen222/Hotseat-Tic-Tac-Toe/internal/telemetry"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("TTT_CONFIG")
	if configPath == "" {
		configPath = "config.yml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Initialize telemetry before the logger so the otel bridge has a provider.
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Config{
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	starter, err := match.ParseStarter(cfg.Session.NextRoundStarter)
	if err != nil {
		return err
	}

	// Session store and event fan-out
	var (
		sessions repository.SessionRepository
		hubOpts  []hub.Option
	)
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer rdb.Close()
		sessions = repository.NewRedisSessionRepository(rdb, cfg.Session.TTL)
		hubOpts = append(hubOpts, hub.WithRedis(rdb))
	default:
		sessions = repository.NewMemorySessionRepository(cfg.Session.TTL)
	}

	metrics, err := telemetry.NewMatchMetrics(nil)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithNextRoundStarter(starter),
		service.WithListener(metrics.Listener),
	}

	// Round archive
	if cfg.Archive.SQLitePath != "" {
		conn, err := db.Connect(cfg.Archive.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to initialize sqlite db: %w", err)
		}
		defer conn.Close()
		opts = append(opts, service.WithArchive(apirepository.NewRoundRepository(conn)))
	}

	h := hub.NewHub(hubOpts...)
	tokens := service.NewTokenIssuer(cfg.Session.JWTSecret, cfg.Session.TTL)
	matchService := service.NewMatchService(sessions, tokens, h, opts...)
	srv := server.NewServer(h, matchService, tokens)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("http server started", "addr", cfg.HTTPAddr, "store", cfg.Session.Store)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		// Hijacked websocket connections are not tracked by Shutdown.
		h.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server exiting")
	return nil
}
