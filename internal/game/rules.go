// internal/game/rules.go
package game

import "fmt"

const (
	// HandSize is the number of cards dealt to each player.
	HandSize = 3

	// MaxStartingChips caps the chips a player may bring to the table.
	MaxStartingChips = 4

	// CapacityLimit is the most players a single deck can serve: every hand dealt
	// in full plus the face-up card.
	CapacityLimit = (DeckSize - 1) / HandSize

	// skipRedrawRange and skipRedrawSentinel define the one-in-a-hundred chance that a
	// played card is not replaced.
	skipRedrawRange    = 100
	skipRedrawSentinel = 13

	// skipRedrawMinHand is the smallest hand, after the played card is removed, that may
	// forgo its replacement.
	skipRedrawMinHand = 2
)

// Rules holds the tunable table settings.
type Rules struct {
	MaxPlayers    int `json:"maxPlayers" yaml:"max_players"`       // registry capacity, at most CapacityLimit
	StartingChips int `json:"startingChips" yaml:"starting_chips"` // chips given when the client sends none
}

// DefaultRules returns the standard table settings.
func DefaultRules() Rules {
	return Rules{
		MaxPlayers:    CapacityLimit,
		StartingChips: MaxStartingChips,
	}
}

// Validate checks the rules can be served by one deck.
func (r Rules) Validate() error {
	if r.MaxPlayers < 1 || r.MaxPlayers > CapacityLimit {
		return fmt.Errorf("maxPlayers must be between 1 and %d, got %d", CapacityLimit, r.MaxPlayers)
	}
	if r.StartingChips < 1 || r.StartingChips > MaxStartingChips {
		return fmt.Errorf("startingChips must be between 1 and %d, got %d", MaxStartingChips, r.StartingChips)
	}
	return nil
}

// startingChips resolves the chips a joining player requested. Missing, zero or
// negative selects the table default; anything above MaxStartingChips is clamped.
func (r Rules) startingChips(requested *int) int {
	if requested == nil || *requested <= 0 {
		return r.StartingChips
	}
	return min(*requested, MaxStartingChips)
}
