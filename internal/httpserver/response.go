package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	domain "authsvc/backend/internal/domain/auth"
)

// ErrorResponse is the uniform body returned on any auth or request failure.
type ErrorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, category, message string) {
	writeJSON(w, status, ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     category,
		Message:   message,
		Path:      r.URL.Path,
	})
}

// writeDomainError is the single place use case errors become HTTP
// responses. Only recognised domain errors carry their text to the client;
// anything else is an internal failure and answers with a generic 500 so
// driver and store details stay in the server log.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidRole):
		writeError(w, r, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "Unauthorized", "invalid username or password")
	case errors.Is(err, domain.ErrUsernameTaken):
		writeError(w, r, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, r, http.StatusNotFound, "Not Found", "user not found")
	case errors.Is(err, domain.ErrTokenExpired):
		writeError(w, r, http.StatusUnauthorized, "Token Expired", "token has expired, authenticate again")
	case errors.Is(err, domain.ErrTokenSignature):
		writeError(w, r, http.StatusUnauthorized, "Invalid Token Signature", "token signature could not be verified")
	case errors.Is(err, domain.ErrTokenMalformed):
		writeError(w, r, http.StatusUnauthorized, "Invalid Token", "token is invalid")
	default:
		log.Printf("internal error on %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "Internal Server Error", "something went wrong")
	}
}

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", "method not allowed")
}
