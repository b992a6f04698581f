package ranking

import (
	"sort"
	"time"

	"github.com/fanhub/fanhub-core/internal/db/models"
)

// Entry is one row of a computed leaderboard. Ranks are dense and
// unique: 1..N with no gaps and no shared positions.
type Entry struct {
	Rank          int    `json:"rank"`
	DonorKey      string `json:"donor_key"`
	DonorName     string `json:"donor_name"`
	TotalAmount   int64  `json:"total_amount"`
	DonationCount int    `json:"donation_count"`
}

type donorTotal struct {
	key     string
	name    string
	total   int64
	count   int
	firstAt time.Time
}

// Aggregate groups the donations inside scope by donor, sums amounts,
// and returns the fully ordered leaderboard. Donors whose in-scope sum
// is not positive are dropped.
//
// Ordering is a deterministic total order: total amount descending,
// then the donor's earliest in-scope contribution ascending, then donor
// key ascending. Ties are always broken, never displayed as shared
// ranks, so pagination is stable and hall-of-fame grants reproducible.
func Aggregate(scope Scope, records []*models.Donation) []Entry {
	totals := make(map[string]*donorTotal)
	order := make([]string, 0)

	for _, d := range records {
		if !scope.Matches(d) {
			continue
		}
		key := d.Key()
		dt, ok := totals[key]
		if !ok {
			dt = &donorTotal{
				key:     key,
				name:    d.DonorName,
				firstAt: d.OccurredAt,
			}
			totals[key] = dt
			order = append(order, key)
		}
		dt.total += d.Amount
		dt.count++
		if d.OccurredAt.Before(dt.firstAt) {
			dt.firstAt = d.OccurredAt
		}
	}

	// Iterate insertion order, not map order, so equal inputs always
	// produce byte-identical output.
	ranked := make([]*donorTotal, 0, len(order))
	for _, key := range order {
		if dt := totals[key]; dt.total > 0 {
			ranked = append(ranked, dt)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.total != b.total {
			return a.total > b.total
		}
		if !a.firstAt.Equal(b.firstAt) {
			return a.firstAt.Before(b.firstAt)
		}
		return a.key < b.key
	})

	entries := make([]Entry, len(ranked))
	for i, dt := range ranked {
		entries[i] = Entry{
			Rank:          i + 1,
			DonorKey:      dt.key,
			DonorName:     dt.name,
			TotalAmount:   dt.total,
			DonationCount: dt.count,
		}
	}

	return entries
}

// Page slices an already ordered leaderboard. Limit and offset apply
// after the full ordering so totals and ranks are never affected.
// A limit of 0 or less means no limit.
func Page(entries []Entry, limit, offset int) []Entry {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []Entry{}
	}
	end := len(entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return entries[offset:end]
}

// PositionOf returns the rank of the donor in the leaderboard, or 0 if
// the donor has no entry.
func PositionOf(entries []Entry, donorKey string) int {
	for _, e := range entries {
		if e.DonorKey == donorKey {
			return e.Rank
		}
	}
	return 0
}
