// Package httpapi is the thin route layer over the transcription core: it
// parses requests, maps failure kinds to status codes, and owns nothing else.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lyricsync/scribed/internal/accel"
	"github.com/lyricsync/scribed/internal/config"
	"github.com/lyricsync/scribed/internal/diag"
	"github.com/lyricsync/scribed/internal/model"
	"github.com/lyricsync/scribed/internal/transcribe"
	"go.uber.org/zap"
)

// Transcriber is the orchestration capability the routes call into.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcribe.Request) (transcribe.Result, *transcribe.Failure)
}

// ModelInfo exposes the currently loaded model, read-only.
type ModelInfo interface {
	Snapshot() model.Snapshot
}

// MemoryInfo exposes accelerator memory counters, read-only.
type MemoryInfo interface {
	Snapshot(ctx context.Context) (accel.Counters, error)
}

type Server struct {
	transcriber Transcriber
	models      ModelInfo
	memory      MemoryInfo
	checker     *diag.Checker
	cfg         *config.Config
	log         *zap.Logger
}

func NewServer(transcriber Transcriber, models ModelInfo, memory MemoryInfo, checker *diag.Checker, cfg *config.Config, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		transcriber: transcriber,
		models:      models,
		memory:      memory,
		checker:     checker,
		cfg:         cfg,
		log:         log,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/", s.handleRoot)
	r.Get("/api", s.handleAPIInfo)
	r.Post("/transcribe", s.handleTranscribe)
	r.Get("/health", s.handleHealth)
	r.Get("/system-check", s.handleSystemCheck)
	r.Get("/privacy-check", s.handlePrivacyCheck)
	r.Get("/dependencies", s.handleDependencies)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"detail": "endpoint not found; see GET /api for the route list",
		})
	})

	return r
}
