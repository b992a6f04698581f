package models

import "time"

// Episode represents one broadcast episode within a season. Episodes
// flagged as rank battles decide VIP and podium qualification; once an
// episode is finalized its qualifying set is frozen.
type Episode struct {
	ID            int64      `db:"id" json:"id"`
	SeasonID      int64      `db:"season_id" json:"season_id"`
	EpisodeNumber int        `db:"episode_number" json:"episode_number"`
	Title         string     `db:"title" json:"title"`
	IsRankBattle  bool       `db:"is_rank_battle" json:"is_rank_battle"`
	IsFinalized   bool       `db:"is_finalized" json:"is_finalized"`
	BroadcastDate *time.Time `db:"broadcast_date" json:"broadcast_date"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Season groups episodes and season-level donations.
type Season struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	StartDate *time.Time `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date"`
}
