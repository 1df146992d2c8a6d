package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"cardex/service"
	log "github.com/sirupsen/logrus"
)

// errorResponse is the wire shape of every failure
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusAndCode maps the service error taxonomy onto HTTP. Anything not in
// the taxonomy is a 500 with the detail kept out of the response body.
func statusAndCode(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity"
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrSelfTrade):
		return http.StatusBadRequest, "self_trade"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrDuplicateRequest):
		return http.StatusConflict, "duplicate_request"
	case errors.Is(err, service.ErrAlreadyDecided):
		return http.StatusConflict, "already_decided"
	case errors.Is(err, service.ErrAlreadyCompleted):
		return http.StatusConflict, "already_completed"
	case errors.Is(err, service.ErrInsufficientQuantity):
		return http.StatusUnprocessableEntity, "insufficient_quantity"
	case errors.Is(err, service.ErrTxConflict):
		// Retries are exhausted by the time this reaches the API
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeError renders a service error as JSON
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusAndCode(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		message = "internal server error"
	}

	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeJSON renders any payload with a status code
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to write response")
	}
}

// decodeJSON reads a request body into dst, rejecting unknown fields
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.Join(service.ErrInvalidInput, err)
	}
	return nil
}
