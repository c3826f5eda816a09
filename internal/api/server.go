package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vidpress/internal/assets"
	"vidpress/internal/config"
	"vidpress/internal/logging"
	"vidpress/internal/queue"
	"vidpress/internal/services"
)

// Submitter enqueues a job for asynchronous rendering.
type Submitter interface {
	Submit(jobID string) error
}

// Server exposes the render pipeline over HTTP.
type Server struct {
	cfg    *config.Config
	store  *queue.Store
	assets *assets.Service
	pool   Submitter
	logger *slog.Logger

	httpServer *http.Server
}

// NewServer wires the HTTP surface against the store, asset service, and pool.
func NewServer(cfg *config.Config, store *queue.Store, assetSvc *assets.Service, pool Submitter, logger *slog.Logger) (*Server, error) {
	if cfg == nil || store == nil || assetSvc == nil || pool == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "new server", "config, store, assets, and pool required", nil)
	}
	server := &Server{
		cfg:    cfg,
		store:  store,
		assets: assetSvc,
		pool:   pool,
		logger: logging.NewComponentLogger(logger, "api"),
	}
	server.httpServer = &http.Server{
		Addr:              cfg.Paths.APIBind,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server, nil
}

// Router builds the chi handler tree. Exposed separately so tests can drive
// the API with httptest without binding a socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/jobs", s.handleCreateJob)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{jobID}", s.handleJobStatus)
		r.Get("/jobs/{jobID}/detail", s.handleJobDetail)
		r.Get("/jobs/{jobID}/result", s.handleJobResult)

		r.Post("/overlays/assets", s.handleUploadAsset)
		r.Get("/overlays/assets", s.handleListAssets)
	})

	return r
}

// Start begins serving on the configured bind address. It returns once the
// listener is active; serve errors surface through the returned channel.
func (s *Server) Start() (<-chan error, error) {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "listen", "bind API address", err)
	}
	s.logger.Info("api listening", logging.String("addr", listener.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		if serveErr := s.httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()
	return errCh, nil
}

// Stop shuts the HTTP server down, waiting for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Health(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "job store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"jobs": map[string]int{
			"total":      summary.Total,
			"pending":    summary.Pending,
			"processing": summary.Processing,
			"done":       summary.Done,
			"error":      summary.Errored,
		},
	})
}
