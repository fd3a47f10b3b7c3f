package models

import "encoding/json"

// RoundState is the table state shared with every connected client.
// A zero RoundState is the state of a game with no round ever started.
type RoundState struct {
	Turn       PlayerID
	Card       *Card
	Count      int
	IsReversed bool
	InProgress bool
}

type roundStateJSON struct {
	Turn       *PlayerID `json:"turn"`
	Card       *Card     `json:"card"`
	Count      int       `json:"count"`
	IsReversed bool      `json:"isReversed"`
	InProgress bool      `json:"inProgress"`
}

// MarshalJSON renders an empty Turn as null.
func (s RoundState) MarshalJSON() ([]byte, error) {
	out := roundStateJSON{
		Card:       s.Card,
		Count:      s.Count,
		IsReversed: s.IsReversed,
		InProgress: s.InProgress,
	}
	if s.Turn != "" {
		turn := s.Turn
		out.Turn = &turn
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *RoundState) UnmarshalJSON(data []byte) error {
	var in roundStateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = RoundState{
		Card:       in.Card,
		Count:      in.Count,
		IsReversed: in.IsReversed,
		InProgress: in.InProgress,
	}
	if in.Turn != nil {
		s.Turn = *in.Turn
	}
	return nil
}
