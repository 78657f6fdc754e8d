package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFieldErrors emits the per-field 400 body. validation.Errors marshals
// as {field: message}; anything else becomes a single form-level message.
func writeFieldErrors(w http.ResponseWriter, err error) {
	var verr validation.Errors
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": map[string]string{"form": err.Error()}})
}
