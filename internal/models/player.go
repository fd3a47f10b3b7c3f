package models

// PlayerID is the opaque identity of a connected player. It is the connection id
// assigned by the websocket layer.
type PlayerID string

// Player is the public record of a registered player.
type Player struct {
	ID    PlayerID `json:"playerId"`
	Name  string   `json:"name"`
	Chips int      `json:"chips"`
}
