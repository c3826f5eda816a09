package api

import (
	"net/http"

	"vidpress/internal/logging"
)

func (s *Server) handleUploadAsset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "asset file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "File must have a content-type")
		return
	}

	asset, err := s.assets.Save(r.Context(), file, header.Filename, contentType)
	if err != nil {
		s.logger.Error("store asset", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to store asset")
		return
	}

	writeJSON(w, http.StatusCreated, assetResponse(asset))
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	stored, err := s.assets.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list assets")
		return
	}
	out := make([]AssetResponse, 0, len(stored))
	for _, asset := range stored {
		out = append(out, assetResponse(asset))
	}
	writeJSON(w, http.StatusOK, out)
}
