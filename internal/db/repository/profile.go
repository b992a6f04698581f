package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fanhub/fanhub-core/internal/db"
	"github.com/fanhub/fanhub-core/internal/db/models"
)

// ProfileRepository defines read access to supporter profiles.
type ProfileRepository interface {
	// GetProfile retrieves a profile by subject key.
	GetProfile(ctx context.Context, subjectKey string) (*models.Profile, error)

	// NicknamesByKeys retrieves display nicknames for the given subject
	// keys. Keys without a profile are absent from the result.
	NicknamesByKeys(ctx context.Context, subjectKeys []string) (map[string]string, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) GetProfile(ctx context.Context, subjectKey string) (*models.Profile, error) {
	query := `
		SELECT subject_key, nickname, role, avatar_url, created_at, updated_at
		FROM profiles
		WHERE subject_key = $1
	`

	p := &models.Profile{}
	err := r.pool.QueryRow(ctx, query, subjectKey).Scan(
		&p.SubjectKey,
		&p.Nickname,
		&p.Role,
		&p.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, db.WrapError(err, "get profile")
	}

	return p, nil
}

func (r *profileRepository) NicknamesByKeys(ctx context.Context, subjectKeys []string) (map[string]string, error) {
	if len(subjectKeys) == 0 {
		return map[string]string{}, nil
	}

	query := `
		SELECT subject_key, nickname
		FROM profiles
		WHERE subject_key = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, subjectKeys)
	if err != nil {
		return nil, db.WrapError(err, "list nicknames")
	}
	defer rows.Close()

	nicknames := make(map[string]string)
	for rows.Next() {
		var key, nickname string
		if err := rows.Scan(&key, &nickname); err != nil {
			return nil, fmt.Errorf("scan nickname: %w", err)
		}
		nicknames[key] = nickname
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nicknames: %w", err)
	}

	return nicknames, nil
}
