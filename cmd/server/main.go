package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abdulla090/knote/internal/clients/kv"
	"github.com/Abdulla090/knote/internal/config"
	"github.com/Abdulla090/knote/internal/logger"

	_ "go.uber.org/automaxprocs" // respect container CPU quotas
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Create bootstrap logger for early errors
	bootstrapLog := log.New(os.Stderr, "bootstrap: ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLog.Printf("config load failed: %v", err)
		os.Exit(1)
	}

	logg, err := logger.Init(cfg)
	if err != nil {
		bootstrapLog.Printf("logger init failed: %v", err)
		os.Exit(1)
	}

	var kvStore kv.Store
	switch cfg.KVBackend {
	case "memory":
		kvStore = kv.NewMemoryStore()
		logg.Warn("using in-memory KV backend, data will not survive a restart")
	default:
		redisStore, err := kv.Init(ctx, cfg, logg)
		if err != nil {
			logg.Error("redis init", "err", err)
			os.Exit(1)
		}
		kvStore = redisStore
	}

	logg.Info("starting knote", "port", cfg.AppPort, "kv_backend", cfg.KVBackend)

	// Setup router and start server
	app := setupRouter(ctx, cfg, kvStore)
	portStr := fmt.Sprintf(":%d", cfg.AppPort)

	g.Go(func() error {
		err := app.Listen(portStr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	// Graceful shutdown
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := app.Shutdown(); err != nil {
			return err
		}
		return kv.Shutdown(shutdownCtx)
	})

	// Wait and exit
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error("fatal", "err", err)
		os.Exit(1)
	}
	logg.Info("graceful shutdown complete")
}
