package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSuccess sends a {success: true, ...} envelope with the given extra
// fields.
func writeSuccess(w http.ResponseWriter, fields map[string]interface{}) {
	payload := map[string]interface{}{"success": true}
	for k, v := range fields {
		payload[k] = v
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "error": msg})
}

// writeFailure maps domain errors onto HTTP statuses.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Not allowed")
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, domain.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, "Invalid recipient")
	case errors.Is(err, domain.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
