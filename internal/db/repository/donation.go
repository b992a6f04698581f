// Package repository contains the pgx data access layer.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fanhub/fanhub-core/internal/db"
	"github.com/fanhub/fanhub-core/internal/db/models"
	"github.com/fanhub/fanhub-core/internal/ranking"
)

// DonationRepository defines read access to contribution records.
// Donations are append-only; ingestion happens outside this service.
type DonationRepository interface {
	// ListByScope retrieves every donation visible to the scope.
	ListByScope(ctx context.Context, scope ranking.Scope) ([]*models.Donation, error)
}

type donationRepository struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new DonationRepository.
func NewDonationRepository(pool *pgxpool.Pool) DonationRepository {
	return &donationRepository{pool: pool}
}

func (r *donationRepository) ListByScope(ctx context.Context, scope ranking.Scope) ([]*models.Donation, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT id, donor_key, donor_name, season_id, episode_id, unit, amount, occurred_at, created_at
		FROM donations
	`)

	args := []interface{}{}
	conds := []string{}

	if scope.SeasonID != nil {
		args = append(args, *scope.SeasonID)
		conds = append(conds, fmt.Sprintf("season_id = $%d", len(args)))
	}
	if scope.EpisodeID != nil {
		args = append(args, *scope.EpisodeID)
		conds = append(conds, fmt.Sprintf("episode_id = $%d", len(args)))
	}
	if scope.Unit != "" && scope.Unit != models.UnitAll {
		args = append(args, scope.Unit)
		conds = append(conds, fmt.Sprintf("unit = $%d", len(args)))
	}

	if len(conds) > 0 {
		query.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	// Stable read order; the aggregator re-sorts but deterministic input
	// keeps repeated reads identical.
	query.WriteString(" ORDER BY occurred_at, id")

	rows, err := r.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, db.WrapError(err, "list donations by scope")
	}
	defer rows.Close()

	return scanDonations(rows)
}

func scanDonations(rows pgx.Rows) ([]*models.Donation, error) {
	var donations []*models.Donation

	for rows.Next() {
		d := &models.Donation{}
		err := rows.Scan(
			&d.ID,
			&d.DonorKey,
			&d.DonorName,
			&d.SeasonID,
			&d.EpisodeID,
			&d.Unit,
			&d.Amount,
			&d.OccurredAt,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan donation: %w", err)
		}
		donations = append(donations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate donations: %w", err)
	}

	return donations, nil
}
