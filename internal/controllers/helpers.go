package controllers

import (
	"counterd/internal/models"
	"counterd/internal/services"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"net/http"
	"strings"
)

func getChannel(r *http.Request) string {
	q := r.URL.Query()
	ch := q.Get("channel")
	if ch == "" {
		ch = q.Get("ch")
	}
	if strings.TrimSpace(ch) == "" {
		return services.DefaultChannel
	}
	return ch
}

// statusFor maps store error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrNoActiveBoss):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeText(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, format, args...)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal Server Error"
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func times(n int) string {
	if n == 1 {
		return "time"
	}
	return "times"
}
