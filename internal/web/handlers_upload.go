package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/mineraly/internal/core"
	"github.com/JonMunkholm/mineraly/internal/web/templates"
)

// UploadResponse reports an applied reload or upload.
type UploadResponse struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Rows     int    `json:"rows"`
	Applied  bool   `json:"applied"`
	Duration string `json:"duration"`
}

func toResponse(res core.ReloadResult) UploadResponse {
	return UploadResponse{
		ID:       res.ID.String(),
		Source:   res.Source,
		Rows:     res.Rows,
		Applied:  res.Applied,
		Duration: res.Duration.String(),
	}
}

// readUpload reads the multipart "file" field within the upload size limit.
// It responds itself and returns false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	maxSize := int64(s.cfg.Upload.MaxFileSize)
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, err, http.StatusRequestEntityTooLarge)
			return "", nil, false
		}
		respondError(w, r, fmt.Errorf("parse upload form: %w", errNoFile), http.StatusBadRequest)
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusInternalServerError)
		return "", nil, false
	}
	return header.Filename, data, true
}

// handleUpload replaces the collection with an uploaded file. The file is
// kept in memory only.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	ctx := WithRequestMetadata(r.Context(), r, core.TriggerUpload)
	res, err := s.service.Upload(ctx, name, data)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if !res.Applied {
		respondError(w, r, core.ErrMalformed, statusFor(core.ErrMalformed))
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Trigger", templates.ReloadedEvent)
		render(w, r, templates.UploadResult(res.Rows, res.Source))
		return
	}
	writeJSON(w, http.StatusOK, toResponse(res))
}

// handleUploadPreview reports how an uploaded file would be read without
// replacing the collection.
func (s *Server) handleUploadPreview(w http.ResponseWriter, r *http.Request) {
	name, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	preview, err := s.service.AnalyzeUpload(r.Context(), name, data)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, preview)
}
