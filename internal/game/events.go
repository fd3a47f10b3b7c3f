// internal/game/events.go
package game

import "github.com/jason-s-yu/ninetynine/internal/models"

// GameEventType names an outbound notification.
type GameEventType string

const (
	EventCurrentPlayers GameEventType = "currentPlayers" // registry snapshot, to one client
	EventNewPlayer      GameEventType = "newPlayer"      // a player joined, to everyone else
	EventPlayerUpdate   GameEventType = "playerUpdate"   // chips changed
	EventDisconnected   GameEventType = "disconnected"   // a player left
	EventCardsUpdated   GameEventType = "cardsUpdated"   // private hand
	EventStateUpdate    GameEventType = "stateUpdate"    // RoundState changed
)

// GameEvent is the wire envelope of every outbound notification.
type GameEvent struct {
	Type    GameEventType `json:"type"`
	Payload interface{}   `json:"payload"`
}

// RecipientKind selects who receives an Envelope.
type RecipientKind int

const (
	ToAll       RecipientKind = iota // every open connection
	ToPlayer                         // only Recipient.Player
	ToAllExcept                      // every open connection but Recipient.Player
)

// Recipient addresses an Envelope.
type Recipient struct {
	Kind   RecipientKind
	Player models.PlayerID
}

// Envelope is one outbound effect of applying an action.
type Envelope struct {
	To    Recipient
	Event GameEvent
}

func toAll(ev GameEvent) Envelope {
	return Envelope{To: Recipient{Kind: ToAll}, Event: ev}
}

func toPlayer(id models.PlayerID, ev GameEvent) Envelope {
	return Envelope{To: Recipient{Kind: ToPlayer, Player: id}, Event: ev}
}

func toAllExcept(id models.PlayerID, ev GameEvent) Envelope {
	return Envelope{To: Recipient{Kind: ToAllExcept, Player: id}, Event: ev}
}

func currentPlayersEvent(players map[models.PlayerID]models.Player) GameEvent {
	return GameEvent{Type: EventCurrentPlayers, Payload: players}
}

func newPlayerEvent(p models.Player) GameEvent {
	return GameEvent{Type: EventNewPlayer, Payload: p}
}

func playerUpdateEvent(p models.Player) GameEvent {
	return GameEvent{Type: EventPlayerUpdate, Payload: p}
}

func disconnectedEvent(id models.PlayerID) GameEvent {
	return GameEvent{Type: EventDisconnected, Payload: id}
}

// cardsUpdatedEvent copies hand so later mutation of the session cannot leak into
// an event still waiting in a write queue.
func cardsUpdatedEvent(hand []models.Card) GameEvent {
	cp := make([]models.Card, len(hand))
	copy(cp, hand)
	return GameEvent{Type: EventCardsUpdated, Payload: cp}
}

func stateUpdateEvent(s models.RoundState) GameEvent {
	return GameEvent{Type: EventStateUpdate, Payload: s}
}
