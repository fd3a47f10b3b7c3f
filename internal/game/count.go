// internal/game/count.go
package game

import "github.com/jason-s-yu/ninetynine/internal/models"

// Threshold is the highest safe count. A play that leaves the count above it ends the round.
const Threshold = 99

const (
	rankAce      = "ace"
	rankNine     = "9"
	rankReversal = "2"
	aceLow       = 1
	aceHigh      = 11
)

// ApplyCard returns the count after card is played onto count.
// Aces take 11 when that stays at or under Threshold and 1 otherwise. Nines set the
// count to Threshold. Every other card adds its value.
func ApplyCard(card models.Card, count int) int {
	switch card.Rank() {
	case rankAce:
		if count+aceHigh <= Threshold {
			return count + aceHigh
		}
		return count + aceLow
	case rankNine:
		return Threshold
	default:
		return count + card.Value
	}
}

// TogglesDirection reports whether card reverses the turn direction.
func TogglesDirection(card models.Card) bool {
	return card.Rank() == rankReversal
}

// Busted reports whether count has gone past Threshold.
func Busted(count int) bool {
	return count > Threshold
}
