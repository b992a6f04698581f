package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fanhub/fanhub-core/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Ranking    *RankingHandler
	Episode    *EpisodeHandler
	Tribute    *TributeHandler
	LiveStatus *LiveStatusHandler
	Health     *HealthHandler

	SyncSecret string
}

// NewRouter assembles the gin engine with middleware and all routes.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.Identity())

	router.GET("/healthz", h.Health.Liveness)
	router.GET("/readyz", h.Health.Readiness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/rankings", h.Ranking.GetRankings)
		api.GET("/rank-tiers", h.Ranking.ListTiers)

		api.GET("/episodes/:id/rankings", h.Episode.GetEpisodeRankings)
		api.POST("/episodes/:id/finalize", h.Episode.FinalizeEpisode)
		api.GET("/seasons/:id/rank-battles", h.Episode.ListRankBattles)
		api.GET("/hall-of-fame", h.Episode.GetHallOfFame)

		api.GET("/tribute/:token/access", h.Tribute.CheckAccess)
		api.GET("/tribute-links/:subjectKey", h.Tribute.TributeLink)

		api.GET("/members", h.LiveStatus.ListMembers)
		api.GET("/live-status", h.LiveStatus.ListStatus)
		api.POST("/live-status/sync", middleware.RequireSyncSecret(h.SyncSecret), h.LiveStatus.TriggerSync)
	}

	return router
}
