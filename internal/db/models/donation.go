package models

import "time"

// UnitAll is the scope filter value that disables unit filtering.
const UnitAll = "all"

// Donation is a single contribution record. Rows are append-only: the
// ingestion path inserts them and the ranking layer only ever reads.
type Donation struct {
	ID         int64     `db:"id" json:"id"`
	DonorKey   *string   `db:"donor_key" json:"donor_key"`
	DonorName  string    `db:"donor_name" json:"donor_name"`
	SeasonID   int64     `db:"season_id" json:"season_id"`
	EpisodeID  *int64    `db:"episode_id" json:"episode_id"`
	Unit       string    `db:"unit" json:"unit"`
	Amount     int64     `db:"amount" json:"amount"`
	OccurredAt time.Time `db:"occurred_at" json:"occurred_at"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Key returns the grouping key for ranking aggregation. Donations from
// registered supporters carry a donor key; anonymous rows fall back to
// the display name so repeat anonymous donors still accumulate.
func (d *Donation) Key() string {
	if d.DonorKey != nil && *d.DonorKey != "" {
		return *d.DonorKey
	}
	return d.DonorName
}
