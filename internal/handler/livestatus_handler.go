package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/db/repository"
	"github.com/fanhub/fanhub-core/internal/livestatus"
	"github.com/fanhub/fanhub-core/pkg/logger"
)

// LiveStatusHandler exposes the live roster and the sync trigger.
type LiveStatusHandler struct {
	synchronizer *livestatus.Synchronizer
	repo         repository.LiveStatusRepository
}

// NewLiveStatusHandler creates a new LiveStatusHandler.
func NewLiveStatusHandler(synchronizer *livestatus.Synchronizer, repo repository.LiveStatusRepository) *LiveStatusHandler {
	return &LiveStatusHandler{synchronizer: synchronizer, repo: repo}
}

// TriggerSync handles POST /api/v1/live-status/sync. The route sits
// behind the shared-secret middleware; cron services and operators call
// it to force a poll outside the regular schedule.
func (h *LiveStatusHandler) TriggerSync(c *gin.Context) {
	summary, err := h.synchronizer.Sync(c.Request.Context())
	if err != nil {
		logger.Log.Error("live-status sync failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "live-status sync failed")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListMembers handles GET /api/v1/members.
func (h *LiveStatusHandler) ListMembers(c *gin.Context) {
	members, err := h.repo.ListMembers(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to list members", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to list members")
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// ListStatus handles GET /api/v1/live-status.
func (h *LiveStatusHandler) ListStatus(c *gin.Context) {
	states, err := h.repo.ListStates(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to list live states", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to list live states")
		return
	}

	live := 0
	for _, s := range states {
		if s.IsLive {
			live++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"live_count": live,
		"channels":   states,
	})
}
