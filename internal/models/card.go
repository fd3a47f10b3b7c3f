package models

import "strings"

// Card is an immutable playing card. Name encodes rank and suit, e.g. "queen_of_hearts".
// Face is nil for numeric ranks.
type Card struct {
	Name  string  `json:"name"`
	Value int     `json:"value"`
	Face  *string `json:"face"`
}

const nameSeparator = "_of_"

// NewCard builds a card for the given rank and suit. face may be empty for numeric ranks.
func NewCard(rank, suit string, value int, face string) Card {
	c := Card{Name: rank + nameSeparator + suit, Value: value}
	if face != "" {
		f := face
		c.Face = &f
	}
	return c
}

// Rank returns the rank portion of the card name ("2".."10", "jack", "queen", "king", "ace").
func (c Card) Rank() string {
	rank, _, _ := strings.Cut(c.Name, nameSeparator)
	return rank
}

// Suit returns the suit portion of the card name, or "" if the name is malformed.
func (c Card) Suit() string {
	_, suit, ok := strings.Cut(c.Name, nameSeparator)
	if !ok {
		return ""
	}
	return suit
}
