// internal/game/action.go
package game

import "github.com/jason-s-yu/ninetynine/internal/models"

// Action is an inbound player action. The concrete types below are the only
// implementations.
type Action interface {
	actionType() string
}

// Connect is sent when a connection opens, before the client has joined.
type Connect struct{}

// Join registers the sender under Name. Chips is nil when the client sent none.
type Join struct {
	Name  string
	Chips *int
}

// Deal starts a round with the sender holding the first turn.
type Deal struct{}

// StartRound starts a round with the named player holding the first turn, falling
// back to the earliest joined player.
type StartRound struct {
	Name string
}

// PlayCard plays the card of that name from the sender's hand.
type PlayCard struct {
	Card models.Card
}

// Disconnect is sent by the transport when the sender's connection closes.
type Disconnect struct{}

func (Connect) actionType() string    { return "connect" }
func (Join) actionType() string       { return "join" }
func (Deal) actionType() string       { return "deal" }
func (StartRound) actionType() string { return "start_round" }
func (PlayCard) actionType() string   { return "play_card" }
func (Disconnect) actionType() string { return "disconnect" }

// Apply is the single entry point for mutating a session. It returns the
// notifications produced, in the order they must be delivered. Invalid actions
// return nil and leave the session untouched.
//
// Apply is not safe for concurrent use; callers serialize it.
func (s *GameSession) Apply(sender models.PlayerID, a Action) []Envelope {
	switch act := a.(type) {
	case Connect:
		return s.Connect(sender)
	case Join:
		return s.Join(sender, act.Name, act.Chips)
	case Deal:
		return s.RequestStart(sender, "", true)
	case StartRound:
		return s.RequestStart(sender, act.Name, false)
	case PlayCard:
		return s.PlayCard(sender, act.Card)
	case Disconnect:
		return s.Leave(sender)
	default:
		s.logger.Warnf("unknown action %T from %s", a, sender)
		return nil
	}
}
