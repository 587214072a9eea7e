package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/CrowderSoup/kanban/database"
	"github.com/CrowderSoup/kanban/page"
	"github.com/CrowderSoup/kanban/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Error encoding response")
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}

// writeServiceError maps err to a status code. The error text always
// reaches the client.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, services.ErrEmptyTitle),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidDueDate),
		errors.Is(err, services.ErrInvalidColor),
		errors.Is(err, services.ErrEmptyEmail),
		errors.Is(err, page.ErrNoColumns):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	default:
		entry := log.WithError(err).WithField("action", action)
		var qe *services.QueryError
		if errors.As(err, &qe) {
			entry = entry.WithField("table", qe.Table)
		}
		entry.Error("Request failed")
		writeError(w, http.StatusInternalServerError, "failed to "+action+": "+err.Error())
	}
}
