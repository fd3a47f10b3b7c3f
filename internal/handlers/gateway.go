// internal/handlers/gateway.go
package handlers

import (
	"runtime/debug"
	"sync"

	"github.com/jason-s-yu/ninetynine/internal/game"
	"github.com/jason-s-yu/ninetynine/internal/models"
	"github.com/sirupsen/logrus"
)

// Conn is an open client connection able to receive game events. Send must not block.
type Conn interface {
	Send(ev game.GameEvent)
}

// Gateway serializes every action against the single GameSession and routes the
// resulting events to open connections. Connections that have not joined still
// receive broadcasts.
type Gateway struct {
	mu      sync.Mutex
	session *game.GameSession
	conns   map[models.PlayerID]Conn
	logger  *logrus.Entry

	apply func(models.PlayerID, game.Action) []game.Envelope
}

// NewGateway wraps session. The gateway owns the session from here on; callers must
// not touch it directly.
func NewGateway(session *game.GameSession, logger logrus.FieldLogger) *Gateway {
	return &Gateway{
		session: session,
		conns:   make(map[models.PlayerID]Conn),
		logger:  logger.WithField("component", "gateway"),
		apply:   session.Apply,
	}
}

// Register adds a connection and greets it with the current registry.
func (g *Gateway) Register(id models.PlayerID, c Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.conns[id] = c
	g.logger.WithField("conn", id).Debugf("connection registered (%d open)", len(g.conns))
	g.deliver(g.applySafe(id, game.Connect{}))
}

// Handle applies one inbound action from id.
func (g *Gateway) Handle(id models.PlayerID, a game.Action) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.conns[id]; !ok {
		g.logger.WithField("conn", id).Debugf("action %T from closed connection, ignoring", a)
		return
	}
	g.deliver(g.applySafe(id, a))
}

// Unregister drops the connection and removes its player, if any, from the table.
func (g *Gateway) Unregister(id models.PlayerID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.conns[id]; !ok {
		return
	}
	delete(g.conns, id)
	g.logger.WithField("conn", id).Debugf("connection unregistered (%d open)", len(g.conns))
	g.deliver(g.applySafe(id, game.Disconnect{}))
}

// Connections is the number of open connections.
func (g *Gateway) Connections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns)
}

// Inspect runs fn with exclusive access to the session.
func (g *Gateway) Inspect(fn func(s *game.GameSession)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.session)
}

// applySafe runs the action and, if the session panics, abandons the game so the
// table stays usable. Must be called with g.mu held.
func (g *Gateway) applySafe(id models.PlayerID, a game.Action) (out []game.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.WithFields(logrus.Fields{
				"conn":   id,
				"action": a,
				"panic":  r,
			}).Errorf("session failed, abandoning game\n%s", debug.Stack())
			out = g.session.Abandon()
		}
	}()
	return g.apply(id, a)
}

// deliver hands envelopes to their recipients in order. Must be called with g.mu held.
func (g *Gateway) deliver(envs []game.Envelope) {
	for _, env := range envs {
		switch env.To.Kind {
		case game.ToPlayer:
			if c, ok := g.conns[env.To.Player]; ok {
				c.Send(env.Event)
			}
		case game.ToAllExcept:
			for id, c := range g.conns {
				if id != env.To.Player {
					c.Send(env.Event)
				}
			}
		default:
			for _, c := range g.conns {
				c.Send(env.Event)
			}
		}
	}
}
