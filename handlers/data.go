package handlers

import (
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/CrowderSoup/zenboard/board"
	"github.com/CrowderSoup/zenboard/services"
)

const maxActionSize = 1 << 20

// DataHandler serves the board and accepts actions
type DataHandler struct {
	store          *board.Store
	dispatcher     *services.Dispatcher
	hub            *services.Hub
	allowedOrigins []string
}

func NewDataHandler(store *board.Store, dispatcher *services.Dispatcher, hub *services.Hub, allowedOrigins []string) *DataHandler {
	return &DataHandler{
		store:          store,
		dispatcher:     dispatcher,
		hub:            hub,
		allowedOrigins: allowedOrigins,
	}
}

// DispatchResponse is the body of a dispatch that was applied.
type DispatchResponse struct {
	board.Views
	Persisted bool   `json:"persisted"`
	Error     string `json:"error,omitempty"`
}

// GetBoard returns the sorted lists and cards
func (h *DataHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Views())
}

// CardsInList returns the cards of one list in display order
func (h *DataHandler) CardsInList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.CardsInList(mux.Vars(r)["id"]))
}

// Dispatch applies one action from the request body
func (h *DataHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionSize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "action too large")
		return
	}

	views, err := h.dispatcher.Apply(body)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, DispatchResponse{Views: views, Persisted: true})
	case errors.Is(err, board.ErrPersistence):
		// The board changed; only the write failed.
		writeJSON(w, http.StatusOK, DispatchResponse{Views: views, Persisted: false, Error: err.Error()})
	case errors.Is(err, board.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, board.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.WithError(err).Error("unexpected dispatch error")
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// HandleWebSocket upgrades the HTTP connection to a WebSocket connection and
// sends the current board right away
func (h *DataHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	client := &services.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
	}

	// Register and queue the current board under the store lock so that
	// every later broadcast is queued after it.
	registered := false
	h.store.Snapshot(func(v board.Views) {
		if registered = h.hub.Register(client); registered {
			h.hub.Send(client, services.MessageBoard, v)
		}
	})
	if !registered {
		conn.Close()
		return
	}

	// Start goroutines for reading and writing
	go client.WritePump()
	go client.ReadPump()
}

func (h *DataHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(h.allowedOrigins, "*") {
		return true
	}
	return slices.Contains(h.allowedOrigins, origin)
}
