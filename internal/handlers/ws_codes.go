// internal/handlers/ws_codes.go
package handlers

import "github.com/coder/websocket"

// Application close codes sent on the game socket, in the 3000-3999 range.
const (
	BadSubprotocolError websocket.StatusCode = 3000 // no "ninetynine" subprotocol negotiated
)
