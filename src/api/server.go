// Package api serves the build step over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"langdetect-agent/src/contracts"
	"langdetect-agent/src/logger"
	"langdetect-agent/src/pipeline"
	"langdetect-agent/src/store"
)

const shutdownTimeout = 10 * time.Second

// Server exposes runs, agents and endpoint validation.
type Server struct {
	pipeline *pipeline.Pipeline
	logger   logger.Logger
	router   *mux.Router
}

// NewServer creates a server backed by p.
func NewServer(p *pipeline.Pipeline, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	s := &Server{pipeline: p, logger: log, router: mux.NewRouter()}

	// Routes live on the root router so a method mismatch answers 405 instead of 404.
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/v1/validate", s.handleValidate).Methods("GET")
	s.router.HandleFunc("/api/v1/runs", s.handleCreateRun).Methods("POST")
	s.router.HandleFunc("/api/v1/runs", s.handleListRuns).Methods("GET")
	s.router.HandleFunc("/api/v1/runs/{id}", s.handleGetRun).Methods("GET")
	s.router.HandleFunc("/api/v1/agents", s.handleListAgents).Methods("GET")

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[API] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("[API] Shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// CreateRunRequest is the body of POST /api/v1/runs. Empty fields use the server
// configuration.
type CreateRunRequest struct {
	RepoURL     string `json:"repo_url"`
	APIEndpoint string `json:"api_endpoint"`
	// Wait blocks until the run finishes and returns the finished record.
	Wait bool `json:"wait"`
}

// CreateRunResponse is returned for queued runs.
type CreateRunResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   s.pipeline.Mode.String(),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	v := s.pipeline.Validator.Validate(r.Context(), r.URL.Query().Get("apiEndpoint"))
	writeJSON(w, http.StatusOK, validationResponse{OK: v.OK, Message: v.Message})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	// An empty body, chunked or not, runs with the server configuration.
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	stepCfg := contracts.StepConfig{RepoURL: req.RepoURL, APIEndpoint: req.APIEndpoint}

	if req.Wait {
		run, err := s.pipeline.SubmitAndWait(r.Context(), stepCfg)
		if err != nil {
			s.logger.Error("[API] Run failed to complete: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, run)
		return
	}

	id, err := s.pipeline.Submit(r.Context(), stepCfg)
	if err != nil {
		s.logger.Error("[API] Failed to submit run: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Location", "/api/v1/runs/"+id)
	writeJSON(w, http.StatusAccepted, CreateRunResponse{ID: id, Status: contracts.RunStatusRunning})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	run, err := s.pipeline.Store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run not found: "+id)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.pipeline.Store.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []contracts.RunRecord{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.pipeline.Registry.Nodes(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if nodes == nil {
		nodes = []contracts.WorkerNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
