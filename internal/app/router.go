package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/specialistvlad/socketgrid/internal/plugin"
	"github.com/specialistvlad/socketgrid/internal/socketserver"
)

// AnnouncementEvent is the default event emitted by POST /announce.
const AnnouncementEvent = "announcement"

// announceRequest is the body accepted by POST /announce.
type announceRequest struct {
	Event     string `json:"event"`
	Namespace string `json:"namespace"`
	Data      any    `json:"data"`
}

// Router returns the HTTP handler serving the Socket.IO endpoint, the health
// check and the announcement endpoint.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()

	if a.config.Healthcheck {
		r.Get("/health", a.healthHandler)
	}
	r.Post("/announce", a.announceHandler)
	r.Handle(a.config.SocketPath+"*", a.SocketServer().Handler())

	return r
}

// healthHandler reports liveness and the number of mounted socket handlers.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.Header().Set("X-Socket-Handlers", strconv.Itoa(a.SocketServer().Handlers()))
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// announceHandler emits an event to every client of a namespace from outside
// any socket handler.
func (a *App) announceHandler(w http.ResponseWriter, r *http.Request) {
	var req announceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid announcement: %v", err), http.StatusBadRequest)
		return
	}
	if req.Event == "" {
		req.Event = AnnouncementEvent
	}
	if req.Namespace == "" {
		req.Namespace = socketserver.DefaultNamespace
	}

	io, err := plugin.SocketAPI(a.plugins)
	if err != nil {
		a.logger.Error("Announcement rejected.", "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	a.logger.Info("Broadcasting announcement.", "event", req.Event, "namespace", req.Namespace)
	io.Of(req.Namespace, nil).Emit(req.Event, req.Data)
	w.WriteHeader(http.StatusAccepted)
}
