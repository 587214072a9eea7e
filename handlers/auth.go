package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/CrowderSoup/kanban/services"
)

// AuthHandler handles authentication-related endpoints
type AuthHandler struct {
	authService *services.AuthService
	// devMode echoes the magic link in the login response.
	devMode bool
}

func NewAuthHandler(authService *services.AuthService, devMode bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		devMode:     devMode,
	}
}

// Login handles the login request (sending a magic link)
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	baseURL := fmt.Sprintf("%s://%s", scheme, r.Host)

	magicLink, err := h.authService.GenerateMagicLink(r.Context(), req.Email, baseURL)
	if err != nil {
		log.WithError(err).Error("Error generating magic link")
		writeError(w, http.StatusInternalServerError, "Failed to generate login link")
		return
	}

	resp := map[string]string{
		"status":  "success",
		"message": "Magic link has been sent",
	}
	if h.devMode {
		resp["magicLink"] = magicLink
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleMagicLink processes a magic link token and redirects to the frontend
func (h *AuthHandler) HandleMagicLink(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "Missing token")
		return
	}

	jwtToken, err := h.authService.RedeemMagicLink(r.Context(), token)
	if errors.Is(err, services.ErrTokenNotFound) {
		writeError(w, http.StatusBadRequest, "Invalid or expired token")
		return
	}
	if err != nil {
		log.WithError(err).Error("Error redeeming magic link")
		writeError(w, http.StatusInternalServerError, "Authentication error")
		return
	}

	http.Redirect(w, r, "/?token="+url.QueryEscape(jwtToken), http.StatusFound)
}

// VerifyToken checks if a JWT token is valid
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid authorization format")
		return
	}

	claims, err := h.authService.VerifyJWT(tokenString)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"user_id": claims.Subject,
		"email":   claims.Email,
		"status":  "valid",
	})
}
