package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/machoscope/machoscope/config"
)

// Server is the HTTP front end for the Analysis Orchestrator: submit a
// binary path for analysis, poll or stream a job's progress, and fetch its
// finished result as JSON. Adapted from the teacher's api/server.go — same
// ServeMux-plus-CORS-middleware shape, same session/broadcaster wiring —
// retargeted from a live-VM session to a one-shot analysis job.
type Server struct {
	jobs        *JobManager
	broadcaster *Broadcaster
	mux         *http.ServeMux
	server      *http.Server
	addr        string
}

// NewServer creates a new API server listening on addr (e.g. ":8787").
func NewServer(addr string, cfg *config.Config) *Server {
	broadcaster := NewBroadcaster()

	s := &Server{
		jobs:        NewJobManager(cfg, broadcaster),
		broadcaster: broadcaster,
		mux:         http.NewServeMux(),
		addr:        addr,
	}

	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler with CORS middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/ws", s.handleWebSocket)
	s.mux.HandleFunc("/api/v1/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/v1/jobs/", s.handleJobRoute)
}

// Start runs the HTTP server. Blocks until Shutdown is called or the
// server fails to serve.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("[machoscope] API server starting on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and disconnects every
// WebSocket client.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// corsMiddleware restricts cross-origin access to localhost, matching the
// teacher's own policy: this is a local developer tool, not a public API.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	if strings.HasPrefix(origin, "file://") {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"jobs":   s.jobs.Count(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleJobs handles POST (submit) and GET (list) on /api/v1/jobs.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmitJob(w, r)
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": s.jobs.List()})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	job, err := s.jobs.Submit(context.Background(), req.Path, req.ForceArch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to submit job: "+err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitJobResponse{JobID: job.ID, CreatedAt: job.CreatedAt})
}

// handleJobRoute handles GET/DELETE on /api/v1/jobs/{id} and
// GET on /api/v1/jobs/{id}/header.
func (s *Server) handleJobRoute(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "job id required")
		return
	}
	jobID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetJob(w, r, jobID)
		case http.MethodDelete:
			s.handleDeleteJob(w, r, jobID)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "header":
		s.handleGetJobHeader(w, r, jobID)
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown job route: %s", parts[1]))
	}
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	state, jobErr, result := job.snapshot()
	resp := JobStatusResponse{
		JobID:     job.ID,
		Path:      job.Path,
		State:     string(state),
		CreatedAt: job.CreatedAt,
	}
	if jobErr != nil {
		resp.Error = jobErr.Error()
	}
	if result != nil {
		resp.Result = ToAnalysisResult(result)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetJobHeader(w http.ResponseWriter, r *http.Request, jobID string) {
	job, err := s.jobs.Get(jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	_, _, result := job.snapshot()
	if result == nil {
		writeError(w, http.StatusConflict, "job has not completed yet")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.HeaderText))
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request, jobID string) {
	if err := s.jobs.Delete(jobID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": jobID})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[machoscope] error encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Message: message, Code: status})
}

func readJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1024*1024))
	return decoder.Decode(v)
}
