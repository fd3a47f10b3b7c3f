// internal/handlers/routes.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/jason-s-yu/ninetynine/internal/middleware"
	"github.com/sirupsen/logrus"
)

// PingHandler answers health checks.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "pong")
}

// NewRouter wires the game socket, the health check and, when publicDir is set, the
// static client.
func NewRouter(logger *logrus.Logger, gw *Gateway, publicDir string) http.Handler {
	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()
	mux.Handle("/ws", logged(GameWSHandler(logger, gw)))
	mux.HandleFunc("/ping", PingHandler)
	if publicDir != "" {
		mux.Handle("/", logged(http.FileServer(http.Dir(publicDir))))
	} else {
		mux.HandleFunc("/", PingHandler)
	}
	return mux
}
