package web

import (
	"net/http"

	"github.com/JonMunkholm/mineraly/internal/core"
)

// handleReload reloads the collection from the configured source. Malformed
// input leaves the published data in place and answers with applied=false.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r, core.TriggerAPI)
	res, err := s.service.Reload(ctx)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, toResponse(res))
}

// handleReloads returns recent reloads, newest first.
func (s *Server) handleReloads(w http.ResponseWriter, r *http.Request) {
	history := s.service.History()
	if history == nil {
		history = []core.ReloadRecord{}
	}
	writeJSON(w, http.StatusOK, history)
}

// handleHealth reports the service status. It answers 503 until a dataset
// has been published.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.service.Status()
	code := http.StatusOK
	if !status.Loaded {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
