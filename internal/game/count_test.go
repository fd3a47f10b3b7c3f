// internal/game/count_test.go
package game

import (
	"testing"

	"github.com/jason-s-yu/ninetynine/internal/models"
	"github.com/stretchr/testify/assert"
)

func cardByName(t *testing.T, name string) models.Card {
	t.Helper()
	for _, c := range BuildDeck() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("no card named %s", name)
	return models.Card{}
}

func TestApplyCardAce(t *testing.T) {
	ace := cardByName(t, "ace_of_spades")
	assert.Equal(t, 91, ApplyCard(ace, 90), "90+11 would bust, so the ace counts 1")
	assert.Equal(t, 61, ApplyCard(ace, 50))
	assert.Equal(t, 99, ApplyCard(ace, 88), "exactly 99 is still safe")
	assert.Equal(t, 100, ApplyCard(ace, 99))
}

func TestApplyCardNine(t *testing.T) {
	for _, suit := range suits {
		nine := cardByName(t, "9_of_"+suit)
		for _, count := range []int{-10, 0, 42, 98} {
			assert.Equal(t, Threshold, ApplyCard(nine, count), "9 of %s on %d", suit, count)
		}
	}
}

func TestApplyCardValues(t *testing.T) {
	assert.Equal(t, 60, ApplyCard(cardByName(t, "king_of_clubs"), 50))
	assert.Equal(t, 40, ApplyCard(cardByName(t, "10_of_hearts"), 50))
	assert.Equal(t, 50, ApplyCard(cardByName(t, "jack_of_hearts"), 50))
	assert.Equal(t, 50, ApplyCard(cardByName(t, "2_of_diamonds"), 50))
	assert.Equal(t, 104, ApplyCard(cardByName(t, "5_of_spades"), 99))
}

func TestTogglesDirection(t *testing.T) {
	for _, c := range BuildDeck() {
		assert.Equal(t, c.Rank() == "2", TogglesDirection(c), c.Name)
	}
}

func TestBusted(t *testing.T) {
	assert.False(t, Busted(99))
	assert.True(t, Busted(100))
}
