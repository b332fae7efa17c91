package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stasher/internal/commons"
	"stasher/internal/infrastructure/logger"
	"stasher/internal/server"
	"stasher/internal/session"
)

const defaultConfigPath = "internal/config/config.yaml"

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = defaultConfigPath
	}
	cfg, err := commons.LoadConfigOrEnv(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, "stasher-session")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	sessionCtrl, sessions, err := session.NewModule(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("wiring session module", zap.Error(err))
	}
	zapLogger.Info("session module ready",
		zap.String("apiBaseUrl", cfg.API.BaseURL),
		zap.String("location", cfg.Session.Location),
	)

	router := server.NewRouter(cfg.Server.CORSAllowedOrigins, zapLogger, sessionCtrl)
	srv := server.New("session", cfg.Server.Port, router, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		zapLogger.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		sessions.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		zapLogger.Fatal("server stopped with error", zap.Error(err))
	}
	zapLogger.Info("server stopped gracefully")
}
