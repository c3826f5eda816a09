package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vidpress/internal/logging"
	"vidpress/internal/overlay"
	"vidpress/internal/queue"
	"vidpress/internal/services"
)

// maxUploadMemory caps multipart request memory before spilling to disk.
const maxUploadMemory = 32 << 20

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "video file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Uploaded file must be a video")
		return
	}

	overlaysRaw := r.FormValue("overlays")
	overlays, err := overlay.ParseList([]byte(overlaysRaw))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid overlays: "+services.Details(err).Message)
		return
	}

	inputPath, err := s.saveUpload(file, header.Filename)
	if err != nil {
		s.logger.Error("persist upload", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to store upload")
		return
	}

	overlaysJSON, err := overlay.MarshalList(overlays)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to encode overlays")
		return
	}

	job, err := s.store.NewJob(r.Context(), inputPath, header.Filename, overlaysJSON)
	if err != nil {
		s.logger.Error("create job", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create job")
		return
	}

	if err := s.pool.Submit(job.ID); err != nil {
		job.SetFailed(services.Details(err).Message)
		if updateErr := s.store.UpdateJob(r.Context(), job); updateErr != nil {
			s.logger.Error("record submit failure", logging.Error(updateErr))
		}
		writeError(w, http.StatusServiceUnavailable, "QUEUE_FULL", "render queue is full, try again later")
		return
	}

	s.logger.Info("job accepted",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("input", inputPath))
	writeJSON(w, http.StatusCreated, jobResponse(job))
}

// saveUpload writes the uploaded video under a fresh UUID filename. Uploads
// with no extension default to .mp4.
func (s *Server) saveUpload(file io.Reader, originalName string) (string, error) {
	if err := os.MkdirAll(s.cfg.Paths.UploadDir, 0o755); err != nil {
		return "", err
	}
	ext := filepath.Ext(originalName)
	if ext == "" {
		ext = ".mp4"
	}
	path := filepath.Join(s.cfg.Paths.UploadDir, uuid.NewString()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListJobs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list jobs")
		return
	}
	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, jobResponse(job))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) loadJob(w http.ResponseWriter, r *http.Request) *queue.Job {
	jobID := chi.URLParam(r, "jobID")
	job, err := s.store.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load job")
		return nil
	}
	if job == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Job not found")
		return nil
	}
	return job
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, jobResponse(job))
}

func (s *Server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}
	detail, err := jobDetailResponse(job)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to decode stored overlays")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.loadJob(w, r)
	if job == nil {
		return
	}
	if job.Status != queue.StatusDone || job.OutputPath == "" {
		writeError(w, http.StatusBadRequest, "NOT_READY", "Result not ready")
		return
	}
	if !pathWithin(s.cfg.Paths.OutputDir, job.OutputPath) {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Invalid output path")
		return
	}
	if _, err := os.Stat(job.OutputPath); errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Output file not found")
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="`+job.ID+`_output.mp4"`)
	http.ServeFile(w, r, job.OutputPath)
}

// pathWithin reports whether target sits inside dir after normalization.
func pathWithin(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
