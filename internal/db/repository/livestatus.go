package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fanhub/fanhub-core/internal/db"
	"github.com/fanhub/fanhub-core/internal/db/models"
)

// LiveStatusRepository manages persisted channel live state and the
// denormalized member live flag.
type LiveStatusRepository interface {
	// GetStates retrieves all persisted channel states keyed by channel.
	GetStates(ctx context.Context) (map[string]*models.ChannelLiveState, error)

	// UpsertStates writes the given states, overwriting existing rows.
	UpsertStates(ctx context.Context, states []*models.ChannelLiveState) error

	// ListStates retrieves all channel states for display, live first.
	ListStates(ctx context.Context) ([]*models.ChannelLiveState, error)

	// ActiveChannelKeys retrieves the channel keys of active members.
	ActiveChannelKeys(ctx context.Context) ([]string, error)

	// SetMemberLive applies a live transition to the member roster flag.
	SetMemberLive(ctx context.Context, channelKey string, isLive bool) error

	// ListMembers retrieves the full roster, live members first.
	ListMembers(ctx context.Context) ([]*models.Member, error)
}

type liveStatusRepository struct {
	pool *pgxpool.Pool
}

// NewLiveStatusRepository creates a new LiveStatusRepository.
func NewLiveStatusRepository(pool *pgxpool.Pool) LiveStatusRepository {
	return &liveStatusRepository{pool: pool}
}

const liveStateColumns = `channel_key, is_live, viewer_count, stream_title, thumbnail_url, last_checked_at`

func (r *liveStatusRepository) GetStates(ctx context.Context) (map[string]*models.ChannelLiveState, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+liveStateColumns+` FROM live_status`)
	if err != nil {
		return nil, db.WrapError(err, "get live states")
	}
	defer rows.Close()

	states, err := scanLiveStates(rows)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*models.ChannelLiveState, len(states))
	for _, s := range states {
		byKey[s.ChannelKey] = s
	}

	return byKey, nil
}

func (r *liveStatusRepository) UpsertStates(ctx context.Context, states []*models.ChannelLiveState) error {
	if len(states) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO live_status (channel_key, is_live, viewer_count, stream_title, thumbnail_url, last_checked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (channel_key) DO UPDATE
		SET is_live = EXCLUDED.is_live,
		    viewer_count = EXCLUDED.viewer_count,
		    stream_title = EXCLUDED.stream_title,
		    thumbnail_url = EXCLUDED.thumbnail_url,
		    last_checked_at = EXCLUDED.last_checked_at
	`
	for _, s := range states {
		batch.Queue(query, s.ChannelKey, s.IsLive, s.ViewerCount, s.StreamTitle, s.ThumbnailURL, s.LastCheckedAt)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range states {
		if _, err := results.Exec(); err != nil {
			return db.WrapError(err, "upsert live states")
		}
	}

	return nil
}

func (r *liveStatusRepository) ListStates(ctx context.Context) ([]*models.ChannelLiveState, error) {
	query := `
		SELECT ` + liveStateColumns + `
		FROM live_status
		ORDER BY is_live DESC, viewer_count DESC, channel_key
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "list live states")
	}
	defer rows.Close()

	return scanLiveStates(rows)
}

func (r *liveStatusRepository) ActiveChannelKeys(ctx context.Context) ([]string, error) {
	query := `
		SELECT channel_key
		FROM members
		WHERE is_active AND channel_key <> ''
		ORDER BY channel_key
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "list active channel keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan channel key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel keys: %w", err)
	}

	return keys, nil
}

func (r *liveStatusRepository) SetMemberLive(ctx context.Context, channelKey string, isLive bool) error {
	query := `
		UPDATE members
		SET is_live = $1, updated_at = NOW()
		WHERE channel_key = $2
	`

	if _, err := r.pool.Exec(ctx, query, isLive, channelKey); err != nil {
		return db.WrapError(err, "set member live flag")
	}

	return nil
}

func (r *liveStatusRepository) ListMembers(ctx context.Context) ([]*models.Member, error) {
	query := `
		SELECT id, name, channel_key, is_live, is_active, created_at, updated_at
		FROM members
		ORDER BY is_live DESC, name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, db.WrapError(err, "list members")
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m := &models.Member{}
		err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.ChannelKey,
			&m.IsLive,
			&m.IsActive,
			&m.CreatedAt,
			&m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

func scanLiveStates(rows pgx.Rows) ([]*models.ChannelLiveState, error) {
	var states []*models.ChannelLiveState

	for rows.Next() {
		s := &models.ChannelLiveState{}
		err := rows.Scan(
			&s.ChannelKey,
			&s.IsLive,
			&s.ViewerCount,
			&s.StreamTitle,
			&s.ThumbnailURL,
			&s.LastCheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan live state: %w", err)
		}
		states = append(states, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate live states: %w", err)
	}

	return states, nil
}
