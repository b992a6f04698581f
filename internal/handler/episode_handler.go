package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/cache"
	"github.com/fanhub/fanhub-core/internal/db"
	"github.com/fanhub/fanhub-core/internal/db/repository"
	"github.com/fanhub/fanhub-core/internal/middleware"
	"github.com/fanhub/fanhub-core/internal/qualification"
	"github.com/fanhub/fanhub-core/internal/ranking"
	"github.com/fanhub/fanhub-core/pkg/logger"
)

// EpisodeHandler serves episode leaderboards, finalization, and the
// hall of fame.
type EpisodeHandler struct {
	episodes  repository.EpisodeRepository
	donations repository.DonationRepository
	profiles  repository.ProfileRepository
	evaluator *qualification.Evaluator
	cache     *cache.RankingsCache
}

// NewEpisodeHandler creates a new EpisodeHandler.
func NewEpisodeHandler(
	episodes repository.EpisodeRepository,
	donations repository.DonationRepository,
	profiles repository.ProfileRepository,
	evaluator *qualification.Evaluator,
	rankings *cache.RankingsCache,
) *EpisodeHandler {
	return &EpisodeHandler{
		episodes:  episodes,
		donations: donations,
		profiles:  profiles,
		evaluator: evaluator,
		cache:     rankings,
	}
}

// GetEpisodeRankings handles GET /api/v1/episodes/:id/rankings.
func (h *EpisodeHandler) GetEpisodeRankings(c *gin.Context) {
	id, err := pathInt64(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "episode id must be an integer")
		return
	}

	ctx := c.Request.Context()
	episode, err := h.episodes.GetEpisode(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "episode not found")
			return
		}
		logger.Log.Error("failed to load episode", zap.Int64("episodeId", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load episode")
		return
	}

	scope := ranking.EpisodeScope(episode.SeasonID, episode.ID)
	records, err := h.donations.ListByScope(ctx, scope)
	if err != nil {
		logger.Log.Error("failed to list donations", zap.Int64("episodeId", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to compute rankings")
		return
	}

	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondError(c, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		respondError(c, http.StatusBadRequest, "offset must be an integer")
		return
	}

	entries := ranking.Aggregate(scope, records)
	page := ranking.Page(entries, limit, offset)

	body := gin.H{
		"episode": episode,
		"total":   len(entries),
		"entries": decorateEntries(page, nicknamesFor(ctx, h.profiles, page)),
	}

	if episode.IsFinalized {
		honors, err := h.evaluator.EpisodeHonors(ctx, episode.ID)
		if err != nil {
			logger.Log.Error("failed to load episode honors", zap.Int64("episodeId", id), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to compute rankings")
			return
		}
		body["recorded_podium"] = honors
	}

	c.JSON(http.StatusOK, body)
}

// FinalizeEpisode handles POST /api/v1/episodes/:id/finalize. Only
// administrators may finalize; the operation is idempotent.
func (h *EpisodeHandler) FinalizeEpisode(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	if !principal.IsAdmin() {
		respondError(c, http.StatusForbidden, "only administrators may finalize episodes")
		return
	}

	id, err := pathInt64(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "episode id must be an integer")
		return
	}

	result, err := h.evaluator.EvaluateEpisode(c.Request.Context(), id)
	if err != nil {
		switch {
		case db.IsNotFound(err):
			respondError(c, http.StatusNotFound, "episode not found")
		case errors.Is(err, qualification.ErrNotRankBattle):
			respondError(c, http.StatusUnprocessableEntity, "episode is not a rank battle")
		default:
			logger.Log.Error("failed to finalize episode", zap.Int64("episodeId", id), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "failed to finalize episode")
		}
		return
	}

	h.cache.Invalidate(c.Request.Context())

	c.JSON(http.StatusOK, result)
}

// ListRankBattles handles GET /api/v1/seasons/:id/rank-battles.
func (h *EpisodeHandler) ListRankBattles(c *gin.Context) {
	seasonID, err := pathInt64(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "season id must be an integer")
		return
	}

	episodes, err := h.episodes.ListRankBattles(c.Request.Context(), seasonID)
	if err != nil {
		logger.Log.Error("failed to list rank battles", zap.Int64("seasonId", seasonID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to list rank battles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"episodes": episodes})
}

// GetHallOfFame handles GET /api/v1/hall-of-fame.
func (h *EpisodeHandler) GetHallOfFame(c *gin.Context) {
	honors, err := h.evaluator.HallOfFame(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to load hall of fame", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load hall of fame")
		return
	}

	c.JSON(http.StatusOK, gin.H{"seasons": honors})
}
