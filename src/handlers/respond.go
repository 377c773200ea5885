package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"finance-tracker/src/middleware"
	"finance-tracker/src/models"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

var (
	errTransactionNotFound = errors.New("transaction not found")
	errCategoryNotFound    = errors.New("category not found")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeInternalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// decodeStatus maps a decodeJSON error to 400 for unreadable bodies and 422
// for well-formed JSON carrying values of the wrong shape.
func decodeStatus(err error) int {
	var syntaxErr *json.SyntaxError
	var maxErr *http.MaxBytesError
	if errors.As(err, &syntaxErr) || errors.As(err, &maxErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

// currentUser returns the resolved caller, answering 401 when there is none.
func currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.Unauthorized(w, "Not authenticated")
		return nil, false
	}
	return user, true
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}
