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
	"stasher/internal/fakeapi"
	"stasher/internal/infrastructure/logger"
	"stasher/internal/server"
)

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "internal/config/config.yaml"
	}
	cfg, err := commons.LoadConfigOrEnv(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, "stasher-fakeapi")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	apiCtrl, err := fakeapi.NewModule(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("wiring fake api", zap.Error(err))
	}

	router := server.NewRouter(cfg.Server.CORSAllowedOrigins, zapLogger, apiCtrl)
	srv := server.New("fakeapi", cfg.FakeAPI.Port, router, zapLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLogger.Fatal("fake api stopped with error", zap.Error(err))
	}
	zapLogger.Info("fake api stopped")
}
