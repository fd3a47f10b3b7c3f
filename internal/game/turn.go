// internal/game/turn.go
package game

import "github.com/jason-s-yu/ninetynine/internal/models"

// NextTurn returns the player after current in join order, or the one before it when
// reversed. Both directions wrap around.
//
// order must be the registry as it is now. A current that is not in order yields
// order[0]; an empty order yields "".
func NextTurn(order []models.PlayerID, current models.PlayerID, reversed bool) models.PlayerID {
	if len(order) == 0 {
		return ""
	}

	idx := -1
	for i, id := range order {
		if id == current {
			idx = i
			break
		}
	}
	if idx == -1 {
		return order[0]
	}

	if reversed {
		if idx == 0 {
			return order[len(order)-1]
		}
		return order[idx-1]
	}
	if idx+1 >= len(order) {
		return order[0]
	}
	return order[idx+1]
}
