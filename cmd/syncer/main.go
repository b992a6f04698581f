// The syncer runs the live-status synchronization on a fixed schedule.
// It is deployed separately from the API server so polling pressure on
// the streaming platform stays constant regardless of API traffic.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/config"
	"github.com/fanhub/fanhub-core/internal/db"
	"github.com/fanhub/fanhub-core/internal/db/repository"
	"github.com/fanhub/fanhub-core/internal/events"
	"github.com/fanhub/fanhub-core/internal/livestatus"
	"github.com/fanhub/fanhub-core/internal/service/panda"
	"github.com/fanhub/fanhub-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close(pool)

	var publisher events.Publisher
	mp, err := events.NewMessagePublisher(&cfg.RabbitMQ)
	if err != nil {
		logger.Log.Warn("event publisher unavailable, transitions will not be announced", zap.Error(err))
	} else {
		publisher = mp
		defer mp.Close()
	}

	liveStatusRepo := repository.NewLiveStatusRepository(pool)
	checker := panda.NewClient(&cfg.Sync)
	synchronizer := livestatus.NewSynchronizer(liveStatusRepo, checker, publisher, &cfg.Sync)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Log.Fatal("failed to create scheduler", zap.Error(err))
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Sync.Interval),
		gocron.NewTask(func() {
			runCtx, cancel := context.WithTimeout(ctx, cfg.Sync.Interval)
			defer cancel()

			summary, err := synchronizer.Sync(runCtx)
			if err != nil {
				logger.Log.Error("scheduled sync failed", zap.Error(err))
				return
			}
			logger.Log.Info("scheduled sync completed",
				zap.Int("total", summary.Total),
				zap.Int("updated", summary.Updated),
				zap.Int("live", summary.LiveCount),
				zap.Int("errors", len(summary.Errors)))
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		logger.Log.Fatal("failed to schedule sync job", zap.Error(err))
	}

	scheduler.Start()
	logger.Log.Info("syncer started", zap.Duration("interval", cfg.Sync.Interval))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down syncer")
	if err := scheduler.Shutdown(); err != nil {
		logger.Log.Error("scheduler shutdown failed", zap.Error(err))
	}
	logger.Log.Info("syncer stopped")
}
