package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agrosafe/farmguard/pkg/riskmap"
)

// Every endpoint responds with the same envelope so clients can branch
// on error without exceptions: {"data": ..., "error": null} on success,
// {"data": null, "error": "..."} on expected failures. List responses
// add a count.
type envelope struct {
	Data  interface{} `json:"data"`
	Error *string     `json:"error"`
	Count *int        `json:"count,omitempty"`
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Data: data})
}

func writeList(w http.ResponseWriter, data interface{}, count int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(envelope{Data: data, Count: &count})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Error: &msg})
}

// writeStoreError maps store-layer failures onto HTTP statuses. Messages
// stay generic; internals never leak to the client.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case riskmap.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, riskmap.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, riskmap.ErrEditingDisabled),
		errors.Is(err, riskmap.ErrNotEditing):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "something went wrong")
	}
}
