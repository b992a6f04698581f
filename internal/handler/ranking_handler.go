package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/cache"
	"github.com/fanhub/fanhub-core/internal/db/repository"
	"github.com/fanhub/fanhub-core/internal/ranking"
	"github.com/fanhub/fanhub-core/pkg/logger"
)

// RankingHandler serves computed leaderboards.
type RankingHandler struct {
	donations repository.DonationRepository
	profiles  repository.ProfileRepository
	cache     *cache.RankingsCache
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(
	donations repository.DonationRepository,
	profiles repository.ProfileRepository,
	rankings *cache.RankingsCache,
) *RankingHandler {
	return &RankingHandler{donations: donations, profiles: profiles, cache: rankings}
}

// RankingEntryDTO decorates a leaderboard entry with its display tier.
type RankingEntryDTO struct {
	ranking.Entry
	Tier        string `json:"tier"`
	TierDisplay string `json:"tier_display"`
	Podium      bool   `json:"podium"`
}

// RankingResponse is the leaderboard payload.
type RankingResponse struct {
	SeasonID  *int64            `json:"season_id,omitempty"`
	EpisodeID *int64            `json:"episode_id,omitempty"`
	Unit      string            `json:"unit,omitempty"`
	Total     int               `json:"total"`
	Entries   []RankingEntryDTO `json:"entries"`
}

// GetRankings handles GET /api/v1/rankings. Scope is taken from the
// season_id, episode_id, and unit query parameters; limit and offset
// page the ordered result. Everyone, including anonymous visitors, may
// read leaderboards.
func (h *RankingHandler) GetRankings(c *gin.Context) {
	seasonID, err := queryInt64(c, "season_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "season_id must be an integer")
		return
	}
	episodeID, err := queryInt64(c, "episode_id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "episode_id must be an integer")
		return
	}
	if episodeID != nil && seasonID == nil {
		respondError(c, http.StatusBadRequest, "episode_id requires season_id")
		return
	}

	scope := ranking.Scope{
		SeasonID:  seasonID,
		EpisodeID: episodeID,
		Unit:      c.Query("unit"),
	}

	entries, err := h.rankedEntries(c, scope)
	if err != nil {
		logger.Log.Error("failed to compute rankings", zap.Error(err))
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
	page := ranking.Page(entries, limit, offset)

	c.JSON(http.StatusOK, RankingResponse{
		SeasonID:  scope.SeasonID,
		EpisodeID: scope.EpisodeID,
		Unit:      scope.Unit,
		Total:     len(entries),
		Entries:   decorateEntries(page, nicknamesFor(c.Request.Context(), h.profiles, page)),
	})
}

// ListTiers handles GET /api/v1/rank-tiers.
func (h *RankingHandler) ListTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tiers": ranking.Tiers})
}

func (h *RankingHandler) rankedEntries(c *gin.Context, scope ranking.Scope) ([]ranking.Entry, error) {
	ctx := c.Request.Context()
	key := cache.Key(scope)

	if entries, ok := h.cache.Get(ctx, key); ok {
		return entries, nil
	}

	records, err := h.donations.ListByScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	entries := ranking.Aggregate(scope, records)
	h.cache.Set(ctx, key, entries)
	return entries, nil
}

// nicknamesFor resolves profile nicknames for the donors on one page.
// Resolution is display-only, so a failed lookup degrades to the raw
// donor names instead of failing the request.
func nicknamesFor(ctx context.Context, profiles repository.ProfileRepository, entries []ranking.Entry) map[string]string {
	if len(entries) == 0 {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.DonorKey)
	}
	nicknames, err := profiles.NicknamesByKeys(ctx, keys)
	if err != nil {
		logger.Log.Warn("failed to resolve donor nicknames", zap.Error(err))
		return nil
	}
	return nicknames
}

func decorateEntries(entries []ranking.Entry, nicknames map[string]string) []RankingEntryDTO {
	out := make([]RankingEntryDTO, len(entries))
	for i, e := range entries {
		if nickname, ok := nicknames[e.DonorKey]; ok && nickname != "" {
			e.DonorName = nickname
		}
		out[i] = RankingEntryDTO{
			Entry:       e,
			Tier:        ranking.TierName(e.Rank),
			TierDisplay: ranking.TierDisplay(e.Rank),
			Podium:      ranking.IsPodium(e.Rank),
		}
	}
	return out
}
