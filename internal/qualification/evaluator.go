// Package qualification decides who has earned VIP standing and podium
// honors, and records podium finishes durably so they survive later
// ranking changes.
package qualification

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fanhub/fanhub-core/internal/db/models"
	"github.com/fanhub/fanhub-core/internal/db/repository"
	"github.com/fanhub/fanhub-core/internal/ranking"
	"github.com/fanhub/fanhub-core/pkg/logger"
)

// ErrNotRankBattle is returned when an episode that is not a rank battle
// is submitted for finalization.
var ErrNotRankBattle = errors.New("episode is not a rank battle")

// EvaluationResult summarizes a finalization run for one episode.
type EvaluationResult struct {
	EpisodeID int64                         `json:"episode_id"`
	SeasonID  int64                         `json:"season_id"`
	Podium    []ranking.Entry               `json:"podium"`
	Granted   []*models.QualificationRecord `json:"granted"`
}

// Evaluator computes VIP and podium standing from donation rankings.
type Evaluator struct {
	donations       repository.DonationRepository
	episodes        repository.EpisodeRepository
	qualifications  repository.QualificationRepository
	profiles        repository.ProfileRepository
	vipThreshold    int
	podiumThreshold int
}

// NewEvaluator creates a new Evaluator.
func NewEvaluator(
	donations repository.DonationRepository,
	episodes repository.EpisodeRepository,
	qualifications repository.QualificationRepository,
	profiles repository.ProfileRepository,
	vipThreshold, podiumThreshold int,
) *Evaluator {
	return &Evaluator{
		donations:       donations,
		episodes:        episodes,
		qualifications:  qualifications,
		profiles:        profiles,
		vipThreshold:    vipThreshold,
		podiumThreshold: podiumThreshold,
	}
}

// EvaluateEpisode finalizes a rank battle episode: it computes the
// episode ranking, grants a durable podium record to every finisher at
// or above the podium threshold, and marks the episode finalized.
// Grants are idempotent, so re-running finalization never duplicates or
// removes records. Records granted here are append-only; nothing ever
// deletes them.
func (e *Evaluator) EvaluateEpisode(ctx context.Context, episodeID int64) (*EvaluationResult, error) {
	episode, err := e.episodes.GetEpisode(ctx, episodeID)
	if err != nil {
		return nil, fmt.Errorf("load episode: %w", err)
	}
	if !episode.IsRankBattle {
		return nil, ErrNotRankBattle
	}

	entries, err := e.episodeRanking(ctx, episode.SeasonID, episode.ID)
	if err != nil {
		return nil, err
	}

	result := &EvaluationResult{
		EpisodeID: episode.ID,
		SeasonID:  episode.SeasonID,
		Podium:    []ranking.Entry{},
		Granted:   []*models.QualificationRecord{},
	}

	for _, entry := range entries {
		if entry.Rank > e.podiumThreshold {
			break
		}
		result.Podium = append(result.Podium, entry)

		record := models.NewQualificationRecord(entry.DonorKey, episode.SeasonID, &episode.ID, entry.Rank)
		inserted, err := e.qualifications.Upsert(ctx, record)
		if err != nil {
			return nil, fmt.Errorf("grant podium record: %w", err)
		}
		if inserted {
			result.Granted = append(result.Granted, record)
		}
	}

	if err := e.episodes.MarkFinalized(ctx, episode.ID); err != nil {
		return nil, fmt.Errorf("mark finalized: %w", err)
	}

	logger.Log.Info("episode finalized",
		zap.Int64("episode_id", episode.ID),
		zap.Int64("season_id", episode.SeasonID),
		zap.Int("podium_size", len(result.Podium)),
		zap.Int("granted", len(result.Granted)))

	return result, nil
}

// IsCurrentlyQualified reports whether the subject currently ranks at
// or above the VIP threshold in the season leaderboard. This reflects
// the live standings and can flip as donations change.
func (e *Evaluator) IsCurrentlyQualified(ctx context.Context, subjectKey string, seasonID int64) (bool, error) {
	records, err := e.donations.ListByScope(ctx, ranking.SeasonScope(seasonID))
	if err != nil {
		return false, fmt.Errorf("list season donations: %w", err)
	}

	entries := ranking.Aggregate(ranking.SeasonScope(seasonID), records)
	rank := ranking.PositionOf(entries, subjectKey)
	return rank > 0 && rank <= e.vipThreshold, nil
}

// IsVIPForEpisode reports whether the subject ranks at or above the VIP
// threshold in one episode's leaderboard.
func (e *Evaluator) IsVIPForEpisode(ctx context.Context, subjectKey string, seasonID, episodeID int64) (bool, error) {
	entries, err := e.episodeRanking(ctx, seasonID, episodeID)
	if err != nil {
		return false, err
	}

	rank := ranking.PositionOf(entries, subjectKey)
	return rank > 0 && rank <= e.vipThreshold, nil
}

// EpisodeHonors returns the durable records granted when an episode was
// finalized. The list is empty for episodes that never went through
// finalization.
func (e *Evaluator) EpisodeHonors(ctx context.Context, episodeID int64) ([]*models.QualificationRecord, error) {
	return e.qualifications.ListByEpisode(ctx, episodeID)
}

// HasEverQualifiedForPodium reports whether the subject holds at least
// one durable podium record. Unlike IsCurrentlyQualified this never
// degrades: once true it stays true.
func (e *Evaluator) HasEverQualifiedForPodium(ctx context.Context, subjectKey string) (bool, error) {
	return e.qualifications.HasPodiumRecord(ctx, subjectKey, e.podiumThreshold)
}

// SeasonHonors groups hall of fame entries for one season.
type SeasonHonors struct {
	SeasonID int64        `json:"season_id"`
	Entries  []HonorEntry `json:"entries"`
}

// HonorEntry is one podium finish shown in the hall of fame.
type HonorEntry struct {
	SubjectKey string `json:"subject_key"`
	Nickname   string `json:"nickname,omitempty"`
	EpisodeID  *int64 `json:"episode_id,omitempty"`
	Rank       int    `json:"rank"`
}

// HallOfFame returns all podium records grouped by season, newest
// season first, with nicknames resolved where a profile exists.
func (e *Evaluator) HallOfFame(ctx context.Context) ([]SeasonHonors, error) {
	records, err := e.qualifications.ListPodium(ctx, e.podiumThreshold)
	if err != nil {
		return nil, fmt.Errorf("list podium records: %w", err)
	}

	keys := make([]string, 0, len(records))
	seen := make(map[string]struct{})
	for _, r := range records {
		if _, ok := seen[r.SubjectKey]; ok {
			continue
		}
		seen[r.SubjectKey] = struct{}{}
		keys = append(keys, r.SubjectKey)
	}

	nicknames, err := e.profiles.NicknamesByKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("resolve nicknames: %w", err)
	}

	honors := make([]SeasonHonors, 0)
	for _, r := range records {
		if len(honors) == 0 || honors[len(honors)-1].SeasonID != r.SeasonID {
			honors = append(honors, SeasonHonors{SeasonID: r.SeasonID, Entries: []HonorEntry{}})
		}
		group := &honors[len(honors)-1]
		group.Entries = append(group.Entries, HonorEntry{
			SubjectKey: r.SubjectKey,
			Nickname:   nicknames[r.SubjectKey],
			EpisodeID:  r.EpisodeID,
			Rank:       r.Rank,
		})
	}

	return honors, nil
}

func (e *Evaluator) episodeRanking(ctx context.Context, seasonID, episodeID int64) ([]ranking.Entry, error) {
	scope := ranking.EpisodeScope(seasonID, episodeID)
	records, err := e.donations.ListByScope(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("list episode donations: %w", err)
	}
	return ranking.Aggregate(scope, records), nil
}
