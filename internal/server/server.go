// Package server exposes the analysis pipeline over HTTP. Routes mirror a
// small document-analysis API: one upload endpoint running the full
// pipeline, plus read endpoints for stored analyses and status checks.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/menta2k/blueprint-analyzer/internal/utils"
	"github.com/menta2k/blueprint-analyzer/pkg/normalizer"
	"github.com/menta2k/blueprint-analyzer/pkg/pipeline"
	"github.com/menta2k/blueprint-analyzer/pkg/store"
	"github.com/menta2k/blueprint-analyzer/pkg/types"
)

// maxUploadBytes caps a single blueprint upload (50 MB).
const maxUploadBytes = 50 << 20

// Server wires the pipeline and store into an HTTP handler.
type Server struct {
	pipeline *pipeline.Pipeline
	store    store.Store
	handler  http.Handler
}

// New creates a server for the given pipeline and store.
func New(p *pipeline.Pipeline, st store.Store, corsOrigins []string) *Server {
	s := &Server{pipeline: p, store: st}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleRoot)
		r.Post("/analyze-blueprint", s.handleAnalyze)
		r.Get("/analyses", s.handleListAnalyses)
		r.Post("/status", s.handleCreateStatus)
		r.Get("/status", s.handleListStatuses)
	})

	s.handler = r
	return s
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe runs the server on addr. Timeouts are generous because a
// single analysis blocks on vision-model inference for tens of seconds.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  1 * time.Minute,
		WriteTimeout: 3 * time.Minute,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Blueprint Digital Measure API"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	filename := utils.SanitizeFilename(header.Filename)
	log.Printf("analyzing %s (%s)", filename, utils.FormatFileSize(int64(len(data))))

	env, err := s.pipeline.Analyze(r.Context(), filename, data)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, normalizer.ErrUnsupportedDocument) || errors.Is(err, normalizer.ErrUnreadableImage) {
			status = http.StatusBadRequest
		}
		log.Printf("analysis of %s failed: %v", filename, err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	analyses, err := s.store.List(r.Context(), 100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ClientName string `json:"client_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ClientName == "" {
		writeError(w, http.StatusBadRequest, "client_name is required")
		return
	}

	check := types.StatusCheck{
		ID:         uuid.NewString(),
		ClientName: in.ClientName,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.store.SaveStatus(r.Context(), check); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, check)
}

func (s *Server) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	checks, err := s.store.ListStatuses(r.Context(), 1000)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, checks)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
