// Package ranking computes donation leaderboards. Everything in this
// package is a pure function over already-fetched records; no I/O.
package ranking

import (
	"github.com/fanhub/fanhub-core/internal/db/models"
)

// Scope bounds a ranking computation to a season, an episode, and an
// optional unit filter. Nil season and episode mean "all time".
type Scope struct {
	SeasonID  *int64
	EpisodeID *int64
	Unit      string
}

// Matches reports whether a donation falls inside the scope.
func (s Scope) Matches(d *models.Donation) bool {
	if s.SeasonID != nil && d.SeasonID != *s.SeasonID {
		return false
	}
	if s.EpisodeID != nil {
		if d.EpisodeID == nil || *d.EpisodeID != *s.EpisodeID {
			return false
		}
	}
	if s.Unit != "" && s.Unit != models.UnitAll && d.Unit != s.Unit {
		return false
	}
	return true
}

// SeasonScope returns a scope covering one whole season.
func SeasonScope(seasonID int64) Scope {
	return Scope{SeasonID: &seasonID}
}

// EpisodeScope returns a scope covering one episode of a season.
func EpisodeScope(seasonID, episodeID int64) Scope {
	return Scope{SeasonID: &seasonID, EpisodeID: &episodeID}
}
