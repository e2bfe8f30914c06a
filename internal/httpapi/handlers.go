package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/lyricsync/scribed/internal/model"
	"github.com/lyricsync/scribed/internal/transcribe"
	"github.com/lyricsync/scribed/internal/version"
	"go.uber.org/zap"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":      "scribed audio transcription service",
		"version":      version.Resolve(),
		"health_check": "/health",
		"system_check": "/system-check",
	})
}

func (s *Server) handleAPIInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "scribed audio transcription service",
		"version": version.Resolve(),
		"endpoints": map[string]string{
			"transcribe":    "POST /transcribe - upload an audio file for transcription",
			"health":        "GET /health - health check",
			"system_check":  "GET /system-check - system diagnostics",
			"privacy_check": "GET /privacy-check - privacy verification",
			"dependencies":  "GET /dependencies - external tool status",
		},
	})
}

// handleTranscribe accepts a multipart upload with optional quality and
// model_size fields and returns the cleaned transcript.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	quality, err := model.ParseQuality(r.FormValue("quality"))
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	var explicit *model.Size
	if raw := r.FormValue("model_size"); raw != "" {
		size, err := model.ParseSize(raw)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		explicit = &size
	}

	result, failure := s.transcriber.Transcribe(r.Context(), transcribe.Request{
		Stream:   file,
		Filename: header.Filename,
		Quality:  quality,
		Size:     explicit,
	})
	if failure != nil {
		s.log.Warn("transcription request failed",
			zap.String("filename", header.Filename),
			zap.String("kind", string(failure.Kind)),
			zap.Error(failure),
		)
		writeDetail(w, statusForKind(failure.Kind), failure.Message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"transcription": result.Text,
		"model":         string(result.ServedSize),
		"device":        string(result.Device),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.models.Snapshot()

	qualities := map[string]string{}
	for _, q := range model.Qualities() {
		qualities[string(q)] = q.Description()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "healthy",
		"model":             "whisper-" + string(snapshot.Size),
		"device":            snapshot.Device,
		"quality_options":   qualities,
		"model_sizes":       model.Sizes(),
		"supported_formats": s.cfg.SortedFormats(),
	})
}

func (s *Server) handleSystemCheck(w http.ResponseWriter, r *http.Request) {
	snapshot := s.models.Snapshot()

	payload := map[string]any{
		"model_size":   snapshot.Size,
		"device":       snapshot.Device,
		"dependencies": s.checker.Run(),
	}

	if counters, err := s.memory.Snapshot(r.Context()); err == nil {
		payload["accelerator_memory"] = counters
	} else {
		s.log.Warn("memory snapshot unavailable", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePrivacyCheck(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.models.Snapshot()

	writeJSON(w, http.StatusOK, map[string]any{
		"local_processing": true,
		"message":          "all transcription runs on this machine; uploads are staged to a temporary file and deleted after each request",
		"technical_details": map[string]any{
			"processing_device":  snapshot.Device,
			"model_size":         snapshot.Size,
			"external_services":  []string{},
			"persistent_storage": false,
		},
	})
}

func (s *Server) handleDependencies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.checker.Run())
}

// statusForKind maps the core's failure taxonomy to HTTP status codes.
func statusForKind(kind transcribe.Kind) int {
	switch kind {
	case transcribe.KindInvalidInput:
		return http.StatusBadRequest
	case transcribe.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case transcribe.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case transcribe.KindCodecUnavailable, transcribe.KindTranscriptionFailed, transcribe.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
