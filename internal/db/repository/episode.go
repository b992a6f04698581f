package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fanhub/fanhub-core/internal/db"
	"github.com/fanhub/fanhub-core/internal/db/models"
)

// EpisodeRepository defines operations for episodes and seasons.
type EpisodeRepository interface {
	// GetEpisode retrieves a single episode by ID.
	GetEpisode(ctx context.Context, id int64) (*models.Episode, error)

	// ListRankBattles retrieves the rank-battle episodes of a season in
	// broadcast order.
	ListRankBattles(ctx context.Context, seasonID int64) ([]*models.Episode, error)

	// MarkFinalized freezes an episode's qualification set. Idempotent.
	MarkFinalized(ctx context.Context, id int64) error

	// ListSeasons retrieves all seasons, newest first.
	ListSeasons(ctx context.Context) ([]*models.Season, error)
}

type episodeRepository struct {
	pool *pgxpool.Pool
}

// NewEpisodeRepository creates a new EpisodeRepository.
func NewEpisodeRepository(pool *pgxpool.Pool) EpisodeRepository {
	return &episodeRepository{pool: pool}
}

const episodeColumns = `id, season_id, episode_number, title, is_rank_battle, is_finalized, broadcast_date, created_at, updated_at`

func (r *episodeRepository) GetEpisode(ctx context.Context, id int64) (*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE id = $1`

	ep := &models.Episode{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ep.ID,
		&ep.SeasonID,
		&ep.EpisodeNumber,
		&ep.Title,
		&ep.IsRankBattle,
		&ep.IsFinalized,
		&ep.BroadcastDate,
		&ep.CreatedAt,
		&ep.UpdatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get episode")
	}

	return ep, nil
}

func (r *episodeRepository) ListRankBattles(ctx context.Context, seasonID int64) ([]*models.Episode, error) {
	query := `
		SELECT ` + episodeColumns + `
		FROM episodes
		WHERE season_id = $1 AND is_rank_battle
		ORDER BY episode_number
	`

	rows, err := r.pool.Query(ctx, query, seasonID)
	if err != nil {
		return nil, db.WrapError(err, "list rank battles")
	}
	defer rows.Close()

	return scanEpisodes(rows)
}

func (r *episodeRepository) MarkFinalized(ctx context.Context, id int64) error {
	query := `
		UPDATE episodes
		SET is_finalized = TRUE, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return db.WrapError(err, "finalize episode")
	}

	if result.RowsAffected() == 0 {
		return db.WrapError(pgx.ErrNoRows, "finalize episode")
	}

	return nil
}

func (r *episodeRepository) ListSeasons(ctx context.Context) ([]*models.Season, error) {
	query := `
		SELECT id, name, is_active, start_date, end_date
		FROM seasons
		ORDER BY id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "list seasons")
	}
	defer rows.Close()

	var seasons []*models.Season
	for rows.Next() {
		s := &models.Season{}
		if err := rows.Scan(&s.ID, &s.Name, &s.IsActive, &s.StartDate, &s.EndDate); err != nil {
			return nil, fmt.Errorf("scan season: %w", err)
		}
		seasons = append(seasons, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seasons: %w", err)
	}

	return seasons, nil
}

func scanEpisodes(rows pgx.Rows) ([]*models.Episode, error) {
	var episodes []*models.Episode

	for rows.Next() {
		ep := &models.Episode{}
		err := rows.Scan(
			&ep.ID,
			&ep.SeasonID,
			&ep.EpisodeNumber,
			&ep.Title,
			&ep.IsRankBattle,
			&ep.IsFinalized,
			&ep.BroadcastDate,
			&ep.CreatedAt,
			&ep.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}

	return episodes, nil
}
