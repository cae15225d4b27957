package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the API routes. metrics and static may be nil.
func NewRouter(data *DataHandler, auth *AuthHandler, mw *AuthMiddleware, metrics, static http.Handler) *mux.Router {
	r := mux.NewRouter()

	// Auth routes
	r.HandleFunc("/api/auth/login", auth.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify", auth.VerifyToken).Methods("GET")

	// Board routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(mw.Auth)
	api.HandleFunc("/board", data.GetBoard).Methods("GET")
	api.HandleFunc("/lists/{id}/cards", data.CardsInList).Methods("GET")
	api.HandleFunc("/actions", data.Dispatch).Methods("POST")

	// WebSocket route for real-time updates
	api.HandleFunc("/ws", data.HandleWebSocket)

	if metrics != nil {
		r.Handle("/metrics", metrics).Methods("GET")
	}

	// Static file server for frontend
	if static != nil {
		r.PathPrefix("/").Handler(static)
	}

	return r
}
