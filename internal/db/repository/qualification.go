package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fanhub/fanhub-core/internal/db"
	"github.com/fanhub/fanhub-core/internal/db/models"
)

// QualificationRepository manages durable hall-of-fame records.
type QualificationRepository interface {
	// Upsert inserts a qualification record if none exists for the
	// (subject, season, episode) tuple. Returns true when a new row was
	// written. Concurrent callers rely on the uniqueness constraint, not
	// application locking, so a losing call reports false with no error.
	Upsert(ctx context.Context, record *models.QualificationRecord) (bool, error)

	// ListBySubject retrieves all records for a subject across scopes.
	ListBySubject(ctx context.Context, subjectKey string) ([]*models.QualificationRecord, error)

	// ListByEpisode retrieves the records granted for one episode.
	ListByEpisode(ctx context.Context, episodeID int64) ([]*models.QualificationRecord, error)

	// HasPodiumRecord reports whether any record with rank <= maxRank
	// exists for the subject, in any scope.
	HasPodiumRecord(ctx context.Context, subjectKey string, maxRank int) (bool, error)

	// ListPodium retrieves all records with rank <= maxRank, ordered for
	// hall-of-fame display: newest season first, season-level grants
	// before episode grants, best rank first.
	ListPodium(ctx context.Context, maxRank int) ([]*models.QualificationRecord, error)
}

type qualificationRepository struct {
	pool *pgxpool.Pool
}

// NewQualificationRepository creates a new QualificationRepository.
func NewQualificationRepository(pool *pgxpool.Pool) QualificationRepository {
	return &qualificationRepository{pool: pool}
}

func (r *qualificationRepository) Upsert(ctx context.Context, record *models.QualificationRecord) (bool, error) {
	// episode_id is nullable and NULLs never collide in a plain unique
	// index, so the schema indexes COALESCE(episode_id, 0) and the
	// conflict target must match that expression.
	query := `
		INSERT INTO qualification_records (id, subject_key, season_id, episode_id, rank, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (subject_key, season_id, (COALESCE(episode_id, 0))) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query,
		record.ID,
		record.SubjectKey,
		record.SeasonID,
		record.EpisodeID,
		record.Rank,
		record.GrantedAt,
	)
	if err != nil {
		return false, db.WrapError(err, "upsert qualification record")
	}

	return result.RowsAffected() > 0, nil
}

func (r *qualificationRepository) ListBySubject(ctx context.Context, subjectKey string) ([]*models.QualificationRecord, error) {
	query := `
		SELECT id, subject_key, season_id, episode_id, rank, granted_at
		FROM qualification_records
		WHERE subject_key = $1
		ORDER BY season_id DESC, episode_id DESC NULLS FIRST, rank
	`

	rows, err := r.pool.Query(ctx, query, subjectKey)
	if err != nil {
		return nil, db.WrapError(err, "list qualification records by subject")
	}
	defer rows.Close()

	return scanQualificationRecords(rows)
}

func (r *qualificationRepository) ListByEpisode(ctx context.Context, episodeID int64) ([]*models.QualificationRecord, error) {
	query := `
		SELECT id, subject_key, season_id, episode_id, rank, granted_at
		FROM qualification_records
		WHERE episode_id = $1
		ORDER BY rank
	`

	rows, err := r.pool.Query(ctx, query, episodeID)
	if err != nil {
		return nil, db.WrapError(err, "list qualification records by episode")
	}
	defer rows.Close()

	return scanQualificationRecords(rows)
}

func (r *qualificationRepository) HasPodiumRecord(ctx context.Context, subjectKey string, maxRank int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM qualification_records
			WHERE subject_key = $1 AND rank <= $2
		)
	`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, subjectKey, maxRank).Scan(&exists); err != nil {
		return false, db.WrapError(err, "check podium record")
	}

	return exists, nil
}

func (r *qualificationRepository) ListPodium(ctx context.Context, maxRank int) ([]*models.QualificationRecord, error) {
	query := `
		SELECT id, subject_key, season_id, episode_id, rank, granted_at
		FROM qualification_records
		WHERE rank <= $1
		ORDER BY season_id DESC, episode_id DESC NULLS FIRST, rank
	`

	rows, err := r.pool.Query(ctx, query, maxRank)
	if err != nil {
		return nil, db.WrapError(err, "list podium records")
	}
	defer rows.Close()

	return scanQualificationRecords(rows)
}

func scanQualificationRecords(rows pgx.Rows) ([]*models.QualificationRecord, error) {
	var records []*models.QualificationRecord

	for rows.Next() {
		rec := &models.QualificationRecord{}
		err := rows.Scan(
			&rec.ID,
			&rec.SubjectKey,
			&rec.SeasonID,
			&rec.EpisodeID,
			&rec.Rank,
			&rec.GrantedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan qualification record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate qualification records: %w", err)
	}

	return records, nil
}
