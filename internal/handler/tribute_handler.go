package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/access"
	"github.com/fanhub/fanhub-core/internal/db"
	"github.com/fanhub/fanhub-core/internal/db/models"
	"github.com/fanhub/fanhub-core/internal/db/repository"
	"github.com/fanhub/fanhub-core/internal/middleware"
	"github.com/fanhub/fanhub-core/internal/qualification"
	"github.com/fanhub/fanhub-core/internal/token"
	"github.com/fanhub/fanhub-core/pkg/logger"
)

// TributeHandler resolves tribute-page tokens and answers access
// checks.
type TributeHandler struct {
	codec          *token.Codec
	evaluator      *qualification.Evaluator
	qualifications repository.QualificationRepository
	profiles       repository.ProfileRepository
	episodes       repository.EpisodeRepository
}

// NewTributeHandler creates a new TributeHandler.
func NewTributeHandler(
	codec *token.Codec,
	evaluator *qualification.Evaluator,
	qualifications repository.QualificationRepository,
	profiles repository.ProfileRepository,
	episodes repository.EpisodeRepository,
) *TributeHandler {
	return &TributeHandler{
		codec:          codec,
		evaluator:      evaluator,
		qualifications: qualifications,
		profiles:       profiles,
		episodes:       episodes,
	}
}

// AccessResponse is the decision payload for a tribute-page check.
// Subject and Records are populated only when access is granted.
type AccessResponse struct {
	access.Decision
	SubjectKey string                        `json:"subject_key,omitempty"`
	Nickname   string                        `json:"nickname,omitempty"`
	Records    []*models.QualificationRecord `json:"records,omitempty"`
}

// CheckAccess handles GET /api/v1/tribute/:token/access. The endpoint
// always answers 200 with a decision; the rendering layer maps the
// outcome to its own screens. A token that does not decode to a
// plausible subject is indistinguishable from a page that does not
// exist.
func (h *TributeHandler) CheckAccess(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)

	req := access.Request{}
	if principal == nil {
		c.JSON(http.StatusOK, AccessResponse{Decision: access.Decide(req)})
		return
	}
	req.Authenticated = true
	req.Admin = principal.IsAdmin()

	subjectKey, err := h.codec.Decode(c.Param("token"))
	if err != nil {
		if !errors.Is(err, token.ErrInvalidToken) {
			logger.Log.Error("token decode failed", zap.Error(err))
		}
		c.JSON(http.StatusOK, AccessResponse{
			Decision: access.Decision{Outcome: access.DeniedNotFound, IsAdmin: req.Admin},
		})
		return
	}

	ctx := c.Request.Context()
	req.Owner = principal.SubjectKey == subjectKey

	req.Qualified, err = h.isQualified(ctx, subjectKey)
	if err != nil {
		logger.Log.Error("failed to resolve qualification", zap.String("subjectKey", subjectKey), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to check access")
		return
	}

	records, err := h.qualifications.ListBySubject(ctx, subjectKey)
	if err != nil {
		logger.Log.Error("failed to list records", zap.String("subjectKey", subjectKey), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to check access")
		return
	}
	req.HasRecords = len(records) > 0

	decision := access.Decide(req)
	resp := AccessResponse{Decision: decision}
	if decision.Outcome.Granted() {
		resp.SubjectKey = subjectKey
		resp.Records = records
		if profile, err := h.profiles.GetProfile(ctx, subjectKey); err == nil {
			resp.Nickname = profile.Nickname
		} else if !db.IsNotFound(err) {
			logger.Log.Warn("failed to load profile", zap.String("subjectKey", subjectKey), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, resp)
}

// TributeLink handles GET /api/v1/tribute-links/:subjectKey. Only the
// subject themselves or an administrator may mint the link.
func (h *TributeHandler) TributeLink(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	subjectKey := c.Param("subjectKey")
	if !principal.IsAdmin() && principal.SubjectKey != subjectKey {
		respondError(c, http.StatusForbidden, "not allowed to mint this link")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subject_key": subjectKey,
		"token":       h.codec.Encode(subjectKey),
		"path":        h.codec.TributePath(subjectKey),
	})
}

// isQualified is true when the subject either holds a durable podium
// record or currently sits at a VIP rank in the active season. The
// durable record wins: a supporter who once reached the podium keeps
// access even after falling in the live standings.
func (h *TributeHandler) isQualified(ctx context.Context, subjectKey string) (bool, error) {
	ever, err := h.evaluator.HasEverQualifiedForPodium(ctx, subjectKey)
	if err != nil || ever {
		return ever, err
	}

	seasons, err := h.episodes.ListSeasons(ctx)
	if err != nil {
		return false, err
	}
	for _, season := range seasons {
		if !season.IsActive {
			continue
		}
		return h.evaluator.IsCurrentlyQualified(ctx, subjectKey, season.ID)
	}

	return false, nil
}
