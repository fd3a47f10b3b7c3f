// internal/game/deck.go
package game

import (
	"errors"
	"math/rand/v2"
	"strconv"

	"github.com/jason-s-yu/ninetynine/internal/models"
	"github.com/sirupsen/logrus"
)

// DeckSize is the number of cards in a full deck.
const DeckSize = 52

// ErrPilesExhausted is the panic value raised when a draw finds both the deck and the
// discard pile empty. The 52 cards are closed over deck, discard and hands, so this
// indicates corrupted state rather than a player mistake.
var ErrPilesExhausted = errors.New("deck and discard pile are both empty")

var (
	suits = []string{"clubs", "hearts", "spades", "diamonds"}
	faces = []string{"king", "queen", "jack", "ace"}
)

var faceValues = map[string]int{
	"king":  10,
	"queen": 10,
	"jack":  0,
	"ace":   11,
}

// numericValue is the count contribution of ranks 2..10. Nines are resolved by ApplyCard.
func numericValue(rank int) int {
	switch rank {
	case 10:
		return -10
	case 2:
		return 0
	default:
		return rank
	}
}

// BuildDeck returns a fresh, unshuffled 52 card deck.
func BuildDeck() []models.Card {
	cards := make([]models.Card, 0, DeckSize)
	for rank := 2; rank <= 10; rank++ {
		for _, suit := range suits {
			cards = append(cards, models.NewCard(strconv.Itoa(rank), suit, numericValue(rank), ""))
		}
	}
	for _, face := range faces {
		for _, suit := range suits {
			cards = append(cards, models.NewCard(face, suit, faceValues[face], face))
		}
	}
	return cards
}

// Shuffle permutes cards in place with Fisher-Yates.
func Shuffle(cards []models.Card, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Deck holds the draw pile and the discard pile of one game.
// It is not safe for concurrent use; the owning GameSession serializes access.
type Deck struct {
	cards   []models.Card
	discard []models.Card
	rng     *rand.Rand
	logger  logrus.FieldLogger
}

// NewDeck returns an empty deck. Call Reset before drawing.
func NewDeck(rng *rand.Rand, logger logrus.FieldLogger) *Deck {
	return &Deck{rng: rng, logger: logger}
}

// Reset replaces the draw pile with a freshly shuffled deck and clears the discard pile.
func (d *Deck) Reset() {
	d.cards = BuildDeck()
	Shuffle(d.cards, d.rng)
	d.discard = nil
	d.logger.Debugf("deck created with %d cards", len(d.cards))
}

// Draw removes and returns the top card. When the draw pile is empty the discard pile
// is shuffled in to replace it first.
func (d *Deck) Draw() models.Card {
	if len(d.cards) == 0 {
		if len(d.discard) == 0 {
			panic(ErrPilesExhausted)
		}
		d.logger.Debugf("reshuffling %d card(s) from discard pile", len(d.discard))
		d.cards = d.discard
		d.discard = nil
		Shuffle(d.cards, d.rng)
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card
}

// DrawN draws n cards in order.
func (d *Deck) DrawN(n int) []models.Card {
	hand := make([]models.Card, 0, n)
	for i := 0; i < n; i++ {
		hand = append(hand, d.Draw())
	}
	return hand
}

// Discard pushes cards onto the discard pile.
func (d *Deck) Discard(cards ...models.Card) {
	d.discard = append(d.discard, cards...)
}

// Clear empties both piles.
func (d *Deck) Clear() {
	d.cards = nil
	d.discard = nil
}

// Size is the number of cards left in the draw pile.
func (d *Deck) Size() int { return len(d.cards) }

// DiscardSize is the number of cards in the discard pile.
func (d *Deck) DiscardSize() int { return len(d.discard) }
