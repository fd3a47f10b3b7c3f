// internal/game/session.go
package game

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/ninetynine/internal/cache"
	"github.com/jason-s-yu/ninetynine/internal/models"
	"github.com/sirupsen/logrus"
)

// ActionRecorder receives a record of every applied action. Implementations must not block.
type ActionRecorder interface {
	RecordAction(rec cache.RoundActionRecord)
}

// GameSession holds the entire state of one table: the player registry, private hands,
// the deck and the shared RoundState. It is not safe for concurrent use; the gateway
// serializes every call.
type GameSession struct {
	ID      uuid.UUID
	RoundID uuid.UUID // changes on every StartRound

	Rules Rules

	// Recorder, if set, is handed a record of each applied action.
	Recorder ActionRecorder

	players map[models.PlayerID]*models.Player
	order   []models.PlayerID // join order; drives NextTurn
	hands   map[models.PlayerID][]models.Card

	deck  *Deck
	state models.RoundState

	rng         *rand.Rand
	skipRoll    func() int
	actionIndex int
	logger      *logrus.Entry
}

// NewGameSession builds an empty table. A nil rng selects a time-seeded source.
func NewGameSession(rng *rand.Rand, logger logrus.FieldLogger) *GameSession {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	id := uuid.New()
	entry := logger.WithField("session", id.String())

	s := &GameSession{
		ID:      id,
		Rules:   DefaultRules(),
		players: make(map[models.PlayerID]*models.Player),
		hands:   make(map[models.PlayerID][]models.Card),
		deck:    NewDeck(rng, entry),
		rng:     rng,
		logger:  entry,
	}
	s.skipRoll = func() int { return s.rng.IntN(skipRedrawRange) }
	return s
}

// Connect greets a newly opened connection with the current registry.
func (s *GameSession) Connect(id models.PlayerID) []Envelope {
	return []Envelope{toPlayer(id, currentPlayersEvent(s.playersSnapshot()))}
}

// Join registers a player. Mid-round joiners are dealt in immediately and sent the table.
func (s *GameSession) Join(id models.PlayerID, name string, chips *int) []Envelope {
	if _, exists := s.players[id]; exists {
		s.logger.Debugf("player %s already joined, ignoring", id)
		return nil
	}
	if name == "" {
		s.logger.Debugf("join from %s without a name, ignoring", id)
		return nil
	}
	if len(s.order) >= s.Rules.MaxPlayers {
		s.logger.Warnf("table full (%d players), rejecting %s", len(s.order), id)
		return nil
	}

	p := &models.Player{ID: id, Name: name, Chips: s.Rules.startingChips(chips)}
	s.players[id] = p
	s.order = append(s.order, id)
	s.hands[id] = []models.Card{}

	var out []Envelope
	if s.state.InProgress {
		s.hands[id] = s.deck.DrawN(HandSize)
		out = append(out,
			toPlayer(id, cardsUpdatedEvent(s.hands[id])),
			toPlayer(id, stateUpdateEvent(s.state)),
		)
	}
	out = append(out,
		toPlayer(id, currentPlayersEvent(s.playersSnapshot())),
		toAllExcept(id, newPlayerEvent(*p)),
	)

	s.logger.WithField("player", id).Infof("player joined: %s (%d chips)", name, p.Chips)
	s.logAction(id, "join", map[string]interface{}{
		"name":     name,
		"chips":    p.Chips,
		"midRound": s.state.InProgress,
	})
	return out
}

// RequestStart validates a start request from sender. With implicit set the sender
// takes the first turn and the request is refused while a round is in progress;
// otherwise the player called name starts, and a running round is dealt over.
func (s *GameSession) RequestStart(sender models.PlayerID, name string, implicit bool) []Envelope {
	if len(s.order) == 0 {
		return nil
	}
	if _, ok := s.players[sender]; !ok {
		s.logger.Debugf("start request from unregistered %s, ignoring", sender)
		return nil
	}

	starter := sender
	if implicit {
		if s.state.InProgress {
			s.logger.Debugf("deal from %s while round in progress, ignoring", sender)
			return nil
		}
	} else {
		starter = s.playerByName(name)
	}
	return s.StartRound(starter)
}

// StartRound deals a fresh round. If starter is not registered the earliest joined
// player takes the first turn.
func (s *GameSession) StartRound(starter models.PlayerID) []Envelope {
	if len(s.order) == 0 {
		return nil
	}
	if _, ok := s.players[starter]; !ok {
		starter = s.order[0]
	}

	s.RoundID = uuid.New()
	s.deck.Reset()

	out := make([]Envelope, 0, len(s.order)+1)
	for _, id := range s.order {
		s.hands[id] = s.deck.DrawN(HandSize)
		out = append(out, toPlayer(id, cardsUpdatedEvent(s.hands[id])))
	}

	faceUp := s.deck.Draw()
	s.deck.Discard(faceUp)

	s.state = models.RoundState{
		Turn:       starter,
		Card:       &faceUp,
		Count:      ApplyCard(faceUp, 0),
		IsReversed: TogglesDirection(faceUp),
		InProgress: true,
	}
	out = append(out, toAll(stateUpdateEvent(s.state)))

	s.logger.WithField("round", s.RoundID.String()).Infof("round started with %d players, face-up %s, count %d", len(s.order), faceUp.Name, s.state.Count)
	s.logAction(starter, "start_round", map[string]interface{}{
		"faceUp": faceUp.Name,
		"count":  s.state.Count,
		"deck":   s.deck.Size(),
	})
	return out
}

// PlayCard plays the named card from the turn holder's hand and resolves its effects.
func (s *GameSession) PlayCard(id models.PlayerID, card models.Card) []Envelope {
	if !s.state.InProgress || s.state.Turn != id {
		s.logger.Debugf("card from %s out of turn, ignoring", id)
		return nil
	}
	hand := s.hands[id]
	idx := slices.IndexFunc(hand, func(c models.Card) bool { return c.Name == card.Name })
	if idx == -1 {
		s.logger.Warnf("player %s played %q which is not in their hand", id, card.Name)
		return nil
	}
	played := hand[idx]

	s.state.Card = &played
	s.state.Count = ApplyCard(played, s.state.Count)
	if TogglesDirection(played) {
		s.state.IsReversed = !s.state.IsReversed
	}
	s.state.Turn = NextTurn(s.order, id, s.state.IsReversed)

	var out []Envelope
	player := s.players[id]
	busted := Busted(s.state.Count)
	if busted {
		player.Chips--
		s.state.InProgress = false
		out = append(out, toAll(playerUpdateEvent(*player)))
		s.logger.WithField("player", id).Infof("%s went over %d with %s, %d chips left", player.Name, Threshold, played.Name, player.Chips)
	}

	// Draw before discarding so a reshuffle cannot hand back the card just played.
	replacement := s.deck.Draw()

	rest := make([]models.Card, 0, HandSize)
	rest = append(rest, hand[:idx]...)
	rest = append(rest, hand[idx+1:]...)
	s.deck.Discard(played)

	skipped := s.skipRoll() == skipRedrawSentinel && len(rest) >= skipRedrawMinHand
	if skipped {
		s.deck.Discard(replacement)
	} else {
		rest = slices.Insert(rest, idx, replacement)
	}
	s.hands[id] = rest

	out = append(out,
		toPlayer(id, cardsUpdatedEvent(rest)),
		toAll(stateUpdateEvent(s.state)),
	)

	s.logAction(id, "play_card", map[string]interface{}{
		"card":       played.Name,
		"count":      s.state.Count,
		"isReversed": s.state.IsReversed,
		"busted":     busted,
		"skipRedraw": skipped,
	})
	return out
}

// Leave removes a player, returning their cards to the discard pile. The next turn is
// computed before removal so the departing player's seat still anchors it.
func (s *GameSession) Leave(id models.PlayerID) []Envelope {
	p, ok := s.players[id]
	if !ok {
		return nil
	}

	s.deck.Discard(s.hands[id]...)
	if s.state.Turn == id {
		s.state.Turn = NextTurn(s.order, id, s.state.IsReversed)
	}

	delete(s.players, id)
	delete(s.hands, id)
	s.order = slices.DeleteFunc(s.order, func(pid models.PlayerID) bool { return pid == id })

	s.logger.WithField("player", id).Infof("player left: %s", p.Name)
	s.logAction(id, "leave", nil)

	if len(s.order) == 0 {
		s.EndGame()
	}

	return []Envelope{
		toAll(disconnectedEvent(id)),
		toAll(stateUpdateEvent(s.state)),
	}
}

// EndGame empties both piles and resets the RoundState. Registered players keep
// their chips.
func (s *GameSession) EndGame() {
	s.deck.Clear()
	s.state = models.RoundState{}
	s.RoundID = uuid.Nil
	s.logger.Info("game ended")
	s.logAction("", "end_game", nil)
}

// Abandon ends the game and takes every hand back. It is the recovery path when the
// session is found in an inconsistent state.
func (s *GameSession) Abandon() []Envelope {
	out := make([]Envelope, 0, len(s.order)+1)
	for _, id := range s.order {
		s.hands[id] = []models.Card{}
		out = append(out, toPlayer(id, cardsUpdatedEvent(s.hands[id])))
	}
	s.EndGame()
	return append(out, toAll(stateUpdateEvent(s.state)))
}

// State returns a copy of the RoundState.
func (s *GameSession) State() models.RoundState {
	return s.state
}

// Players returns the registry in join order.
func (s *GameSession) Players() []models.Player {
	out := make([]models.Player, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.players[id])
	}
	return out
}

// Player looks up one registered player.
func (s *GameSession) Player(id models.PlayerID) (models.Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return models.Player{}, false
	}
	return *p, true
}

// Hand returns a copy of a player's private hand.
func (s *GameSession) Hand(id models.PlayerID) []models.Card {
	return slices.Clone(s.hands[id])
}

// DeckSize is the number of cards left to draw.
func (s *GameSession) DeckSize() int { return s.deck.Size() }

// DiscardSize is the number of cards on the discard pile.
func (s *GameSession) DiscardSize() int { return s.deck.DiscardSize() }

// CardsInPlay counts every card across deck, discard and hands. It equals DeckSize
// whenever a round has been dealt.
func (s *GameSession) CardsInPlay() int {
	n := s.deck.Size() + s.deck.DiscardSize()
	for _, h := range s.hands {
		n += len(h)
	}
	return n
}

func (s *GameSession) playerByName(name string) models.PlayerID {
	for _, id := range s.order {
		if s.players[id].Name == name {
			return id
		}
	}
	return ""
}

func (s *GameSession) playersSnapshot() map[models.PlayerID]models.Player {
	out := make(map[models.PlayerID]models.Player, len(s.players))
	for id, p := range s.players {
		out[id] = *p
	}
	return out
}

// logAction numbers the action and hands it to the Recorder.
func (s *GameSession) logAction(actor models.PlayerID, actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if s.Recorder == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	s.Recorder.RecordAction(cache.RoundActionRecord{
		SessionID:     s.ID,
		RoundID:       s.RoundID,
		ActionIndex:   s.actionIndex,
		ActorID:       string(actor),
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	})
}
