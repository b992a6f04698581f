package ranking

import "fmt"

// TierGroup buckets catalog positions for display styling.
type TierGroup string

const (
	TierRoyal   TierGroup = "royal"
	TierNoble   TierGroup = "noble"
	TierServant TierGroup = "servant"
	TierJester  TierGroup = "jester"
)

// Tier is one row of the static rank-battle tier catalog. Display-only:
// nothing in qualification or access control depends on it.
type Tier struct {
	Position int       `json:"position"`
	Name     string    `json:"name"`
	Emoji    string    `json:"emoji"`
	Group    TierGroup `json:"group"`
	Color    string    `json:"color"`
}

// Tiers is the ordered catalog mapping leaderboard positions 1..12 to
// named ranks.
var Tiers = []Tier{
	{Position: 1, Name: "Queen", Emoji: "👑", Group: TierRoyal, Color: "#ffd700"},
	{Position: 2, Name: "Princess", Emoji: "👸", Group: TierRoyal, Color: "#ff69b4"},
	{Position: 3, Name: "Duchess", Emoji: "🏰", Group: TierRoyal, Color: "#9370db"},
	{Position: 4, Name: "Countess", Emoji: "🎩", Group: TierNoble, Color: "#4169e1"},
	{Position: 5, Name: "Head Maid", Emoji: "💼", Group: TierNoble, Color: "#20b2aa"},
	{Position: 6, Name: "Maid", Emoji: "👗", Group: TierNoble, Color: "#3cb371"},
	{Position: 7, Name: "Servant I", Emoji: "🧹", Group: TierServant, Color: "#cd853f"},
	{Position: 8, Name: "Servant II", Emoji: "🧹", Group: TierServant, Color: "#d2691e"},
	{Position: 9, Name: "Servant III", Emoji: "🧹", Group: TierServant, Color: "#a0522d"},
	{Position: 10, Name: "Head Jester", Emoji: "🃏", Group: TierJester, Color: "#696969"},
	{Position: 11, Name: "Jester", Emoji: "🃏", Group: TierJester, Color: "#505050"},
	{Position: 12, Name: "Fool", Emoji: "💀", Group: TierJester, Color: "#363636"},
}

// TierByPosition returns the catalog row for a position, or nil when the
// position is outside the table.
func TierByPosition(position int) *Tier {
	for i := range Tiers {
		if Tiers[i].Position == position {
			return &Tiers[i]
		}
	}
	return nil
}

// TierName returns the tier name for a position, falling back to a
// numeric label beyond the table.
func TierName(position int) string {
	if t := TierByPosition(position); t != nil {
		return t.Name
	}
	return fmt.Sprintf("#%d", position)
}

// TierDisplay returns the emoji-prefixed display string for a position.
func TierDisplay(position int) string {
	if t := TierByPosition(position); t != nil {
		return fmt.Sprintf("%s %s", t.Emoji, t.Name)
	}
	return fmt.Sprintf("#%d", position)
}

// IsPodium reports whether a rank is a podium (top-3) position.
func IsPodium(rank int) bool {
	return rank >= 1 && rank <= 3
}
