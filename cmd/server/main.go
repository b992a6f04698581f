package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/cache"
	"github.com/fanhub/fanhub-core/internal/config"
	"github.com/fanhub/fanhub-core/internal/db"
	"github.com/fanhub/fanhub-core/internal/db/repository"
	"github.com/fanhub/fanhub-core/internal/events"
	"github.com/fanhub/fanhub-core/internal/handler"
	"github.com/fanhub/fanhub-core/internal/livestatus"
	"github.com/fanhub/fanhub-core/internal/qualification"
	"github.com/fanhub/fanhub-core/internal/service/panda"
	"github.com/fanhub/fanhub-core/internal/token"
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

	donationRepo := repository.NewDonationRepository(pool)
	episodeRepo := repository.NewEpisodeRepository(pool)
	qualificationRepo := repository.NewQualificationRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	liveStatusRepo := repository.NewLiveStatusRepository(pool)

	rankingsCache := cache.New(&cfg.Redis)
	defer rankingsCache.Close()
	if rankingsCache == nil {
		logger.Log.Info("rankings cache disabled, no redis address configured")
	}

	// The broker is optional for the API server; live-status
	// transitions still persist without it.
	var publisher events.Publisher
	var broker handler.BrokerHealth
	mp, err := events.NewMessagePublisher(&cfg.RabbitMQ)
	if err != nil {
		logger.Log.Warn("event publisher unavailable, transitions will not be announced", zap.Error(err))
	} else {
		publisher = mp
		broker = mp
		defer mp.Close()
	}

	codec, err := token.NewCodec(cfg.Token.Key)
	if err != nil {
		logger.Log.Fatal("failed to create token codec", zap.Error(err))
	}

	evaluator := qualification.NewEvaluator(
		donationRepo, episodeRepo, qualificationRepo, profileRepo,
		cfg.Ranking.VIPThreshold, cfg.Ranking.PodiumThreshold,
	)

	checker := panda.NewClient(&cfg.Sync)
	synchronizer := livestatus.NewSynchronizer(liveStatusRepo, checker, publisher, &cfg.Sync)

	router := handler.NewRouter(handler.Handlers{
		Ranking:    handler.NewRankingHandler(donationRepo, profileRepo, rankingsCache),
		Episode:    handler.NewEpisodeHandler(episodeRepo, donationRepo, profileRepo, evaluator, rankingsCache),
		Tribute:    handler.NewTributeHandler(codec, evaluator, qualificationRepo, profileRepo, episodeRepo),
		LiveStatus: handler.NewLiveStatusHandler(synchronizer, liveStatusRepo),
		Health:     handler.NewHealthHandler(pool, broker),
		SyncSecret: cfg.Sync.Secret,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Log.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}

	logger.Log.Info("server stopped")
}
