// internal/game/turn_test.go
package game

import (
	"testing"

	"github.com/jason-s-yu/ninetynine/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNextTurn(t *testing.T) {
	order := []models.PlayerID{"A", "B", "C"}

	tests := []struct {
		name     string
		current  models.PlayerID
		reversed bool
		want     models.PlayerID
	}{
		{"forward", "B", false, "C"},
		{"reversed", "B", true, "A"},
		{"forward wraps", "C", false, "A"},
		{"reversed wraps", "A", true, "C"},
		{"unknown current", "Z", false, "A"},
		{"unknown current reversed", "Z", true, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextTurn(order, tt.current, tt.reversed))
		})
	}
}

func TestNextTurnSmallTables(t *testing.T) {
	assert.Equal(t, models.PlayerID(""), NextTurn(nil, "A", false))
	assert.Equal(t, models.PlayerID("A"), NextTurn([]models.PlayerID{"A"}, "A", false))
	assert.Equal(t, models.PlayerID("A"), NextTurn([]models.PlayerID{"A"}, "A", true))
	assert.Equal(t, models.PlayerID("B"), NextTurn([]models.PlayerID{"A", "B"}, "A", true))
}
