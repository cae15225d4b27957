package handlers

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/CrowderSoup/zenboard/services"
)

// AuthHandler handles authentication-related endpoints
type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login exchanges the board passphrase for a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.authService.Enabled() {
		writeError(w, http.StatusNotFound, "authentication is disabled")
		return
	}

	// Parse request
	var req struct {
		Passphrase string `json:"passphrase"`
	}

	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	token, err := h.authService.Login(req.Passphrase)
	if errors.Is(err, services.ErrInvalidPassphrase) {
		log.WithField("remote", r.RemoteAddr).Warn("rejected login")
		writeError(w, http.StatusUnauthorized, "invalid passphrase")
		return
	}
	if err != nil {
		log.Printf("Error creating JWT: %v", err)
		writeError(w, http.StatusInternalServerError, "Authentication error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// VerifyToken checks if a JWT token is valid
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	if !h.authService.Enabled() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "valid"})
		return
	}

	tokenString, err := bearerToken(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	// Verify token
	if _, err := h.authService.VerifyJWT(tokenString); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "valid"})
}
