package web

// errors.go provides unified error response handling for the web layer.
//
// Errors are logged with full technical details server-side and returned to
// clients as user-friendly messages with an action and a code. The response
// format follows the request: an HTMX fragment, JSON, or plain text.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/mineraly/internal/core"
	"github.com/JonMunkholm/mineraly/internal/logging"
	"github.com/JonMunkholm/mineraly/internal/source"
	"github.com/JonMunkholm/mineraly/internal/web/templates"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errNoFile      = errors.New("no file provided")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNoData):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrReloadBusy):
		return http.StatusConflict
	case errors.Is(err, core.ErrNoSource):
		return http.StatusConflict
	case errors.Is(err, core.ErrMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptyFile), errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, source.ErrAcquisition):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns an appropriate response
// based on the request type (HTMX, JSON, or plain).
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	level := slog.LevelError
	if statusCode < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode)
	default:
		respondErrorPlain(w, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorPlain writes a plain text error response.
func respondErrorPlain(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error alert", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
