// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/ninetynine/internal/game"
	"github.com/jason-s-yu/ninetynine/internal/middleware"
	"github.com/jason-s-yu/ninetynine/internal/models"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the websocket subprotocol clients must request.
const Subprotocol = "ninetynine"

const (
	outBufferSize = 64
	writeTimeout  = 5 * time.Second
	pingInterval  = 30 * time.Second

	eventPong  game.GameEventType = "pong"
	eventError game.GameEventType = "error"
)

var errMalformed = errors.New("malformed message")

// inboundMessage is the wire shape of every client message. Fields not used by a
// given type are ignored.
type inboundMessage struct {
	Type  string       `json:"type"`
	Name  *string      `json:"name,omitempty"`
	Chips *float64     `json:"chips,omitempty"`
	Card  *models.Card `json:"card,omitempty"`
}

// action converts the message into a game action.
func (m inboundMessage) action() (game.Action, error) {
	switch m.Type {
	case "nameEntered":
		if m.Name == nil || *m.Name == "" {
			return nil, fmt.Errorf("%w: nameEntered without a name", errMalformed)
		}
		join := game.Join{Name: *m.Name}
		if m.Chips != nil {
			chips, err := wholeChips(*m.Chips)
			if err != nil {
				return nil, err
			}
			join.Chips = &chips
		}
		return join, nil
	case "deal":
		return game.Deal{}, nil
	case "startRound":
		var name string
		if m.Name != nil {
			name = *m.Name
		}
		return game.StartRound{Name: name}, nil
	case "cardPlayed":
		if m.Card == nil || m.Card.Name == "" {
			return nil, fmt.Errorf("%w: cardPlayed without a card", errMalformed)
		}
		return game.PlayCard{Card: *m.Card}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errMalformed, m.Type)
	}
}

// wholeChips accepts only integral chip counts within int32 range.
func wholeChips(f float64) (int, error) {
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: chips must be a whole number, got %v", errMalformed, f)
	}
	return int(f), nil
}

// wsClient is one websocket connection's outbound queue, drained by writePump.
type wsClient struct {
	id      models.PlayerID
	outChan chan game.GameEvent
	cancel  context.CancelFunc
	logger  *logrus.Entry
}

// Send queues ev without blocking. A client whose queue is full is disconnected.
func (c *wsClient) Send(ev game.GameEvent) {
	select {
	case c.outChan <- ev:
	default:
		c.logger.Warnf("outbound queue full, dropping %s and closing", ev.Type)
		c.cancel()
	}
}

func (c *wsClient) sendError(msg string) {
	c.Send(game.GameEvent{Type: eventError, Payload: msg})
}

// GameWSHandler upgrades the request, registers the connection with the gateway and
// runs its read loop until the client goes away.
func GameWSHandler(logger *logrus.Logger, gw *Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the ninetynine subprotocol")
			return
		}

		id := models.PlayerID(uuid.NewString())
		entry := logger.WithField("conn", id)
		middleware.LogWebSocketConnect(entry, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		client := &wsClient{
			id:      id,
			outChan: make(chan game.GameEvent, outBufferSize),
			cancel:  cancel,
			logger:  entry,
		}
		go writePump(ctx, c, client)

		gw.Register(id, client)
		err = readPump(ctx, c, gw, client)
		gw.Unregister(id)

		middleware.LogWebSocketDisconnect(entry, r.RemoteAddr, r.URL.Path, err)
		c.Close(closeStatus(err))
	}
}

// closeStatus picks the close frame sent once the read loop has ended.
func closeStatus(readErr error) (websocket.StatusCode, string) {
	if readErr == nil {
		return websocket.StatusNormalClosure, ""
	}
	return websocket.StatusInternalError, "read failed"
}

// readPump reads client messages until the connection closes. It returns nil on a
// normal close.
func readPump(ctx context.Context, c *websocket.Conn, gw *Gateway, client *wsClient) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			client.logger.Warnf("received non-text message type %d, ignoring", typ)
			continue
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.logger.Warnf("invalid json: %v", err)
			client.sendError("Invalid JSON format.")
			continue
		}

		if msg.Type == "ping" {
			client.logger.Trace("ping")
			client.Send(game.GameEvent{Type: eventPong})
			continue
		}

		action, err := msg.action()
		if err != nil {
			client.logger.Warn(err)
			client.sendError(err.Error())
			continue
		}

		client.logger.Debugf("received %s", msg.Type)
		gw.Handle(client.id, action)
	}
}

// writePump serializes queued events onto the socket and keeps the connection alive
// with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, client *wsClient) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-client.outChan:
			data, err := json.Marshal(ev)
			if err != nil {
				client.logger.Errorf("failed to marshal %s: %v", ev.Type, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				client.logger.Warnf("failed to write %s: %v", ev.Type, err)
				client.cancel()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				client.logger.Warnf("ping failed, assuming disconnect: %v", err)
				client.cancel()
				return
			}
		}
	}
}
