package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter wires every API route. Board routes require a session token.
func NewRouter(authHandler *AuthHandler, boardHandler *BoardHandler, authMiddleware *AuthMiddleware, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.Use(RequestLogger)

	r.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "ts": time.Now().UTC().Format(time.RFC3339)})
	}).Methods("GET")

	// Auth routes
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/auth/verify", authHandler.VerifyToken).Methods("GET")
	r.HandleFunc("/api/auth/magic-link", authHandler.HandleMagicLink).Methods("GET")

	// Board routes (protected)
	api := r.PathPrefix("/api/boards").Subrouter()
	api.Use(authMiddleware.Auth)
	api.HandleFunc("", boardHandler.ListBoards).Methods("GET")
	api.HandleFunc("", boardHandler.CreateBoard).Methods("POST")
	api.HandleFunc("/{id}", boardHandler.GetBoard).Methods("GET")
	api.HandleFunc("/{id}", boardHandler.UpdateBoard).Methods("PATCH")
	api.HandleFunc("/{id}/columns", boardHandler.CreateColumn).Methods("POST")
	api.HandleFunc("/{id}/tasks", boardHandler.CreateTask).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}
