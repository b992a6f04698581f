package models

import (
	"time"

	"github.com/google/uuid"
)

// QualificationRecord is a durable hall-of-fame row: proof that a
// subject once held a qualifying rank in some scope. Records are written
// at most once per (subject, season, episode) tuple and never deleted by
// normal operation; removal is an explicit administrative action.
type QualificationRecord struct {
	ID         uuid.UUID `db:"id" json:"id"`
	SubjectKey string    `db:"subject_key" json:"subject_key"`
	SeasonID   int64     `db:"season_id" json:"season_id"`
	EpisodeID  *int64    `db:"episode_id" json:"episode_id"`
	Rank       int       `db:"rank" json:"rank"`
	GrantedAt  time.Time `db:"granted_at" json:"granted_at"`
}

// NewQualificationRecord creates a grant for the given scope. A nil
// episodeID records a season-level grant.
func NewQualificationRecord(subjectKey string, seasonID int64, episodeID *int64, rank int) *QualificationRecord {
	return &QualificationRecord{
		ID:         uuid.New(),
		SubjectKey: subjectKey,
		SeasonID:   seasonID,
		EpisodeID:  episodeID,
		Rank:       rank,
		GrantedAt:  time.Now(),
	}
}
