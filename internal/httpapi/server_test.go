package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lyricsync/scribed/internal/accel"
	"github.com/lyricsync/scribed/internal/config"
	"github.com/lyricsync/scribed/internal/diag"
	"github.com/lyricsync/scribed/internal/model"
	"github.com/lyricsync/scribed/internal/transcribe"
	"github.com/stretchr/testify/require"
)

type fakeTranscriber struct {
	result  transcribe.Result
	failure *transcribe.Failure
	lastReq transcribe.Request
}

func (f *fakeTranscriber) Transcribe(_ context.Context, req transcribe.Request) (transcribe.Result, *transcribe.Failure) {
	f.lastReq = req
	if f.failure != nil {
		return transcribe.Result{}, f.failure
	}
	return f.result, nil
}

type fakeModelInfo struct{}

func (fakeModelInfo) Snapshot() model.Snapshot {
	return model.Snapshot{Size: model.Small, Device: accel.CPU}
}

type fakeMemoryInfo struct{}

func (fakeMemoryInfo) Snapshot(context.Context) (accel.Counters, error) {
	return accel.Counters{AllocatedBytes: 7, ReservedBytes: 11}, nil
}

func newTestServer(transcriber *fakeTranscriber) *Server {
	return NewServer(transcriber, fakeModelInfo{}, fakeMemoryInfo{},
		diag.NewChecker("/opt/whisper/whisper-cli"), config.Default(), nil)
}

func multipartBody(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake audio bytes"))
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestTranscribeEndpointSuccess(t *testing.T) {
	t.Parallel()

	transcriber := &fakeTranscriber{result: transcribe.Result{
		Text:       "cleaned text",
		ServedSize: model.Medium,
		Device:     accel.CUDA,
	}}
	router := newTestServer(transcriber).Router()

	body, contentType := multipartBody(t, "song.mp3", map[string]string{
		"quality":    "high",
		"model_size": "medium",
	})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "cleaned text", payload["transcription"])
	require.Equal(t, "medium", payload["model"], "response reports the size that actually served")
	require.Equal(t, "cuda", payload["device"])

	require.Equal(t, "song.mp3", transcriber.lastReq.Filename)
	require.Equal(t, model.High, transcriber.lastReq.Quality)
	require.NotNil(t, transcriber.lastReq.Size)
	require.Equal(t, model.Medium, *transcriber.lastReq.Size)
}

func TestTranscribeEndpointDefaultsQuality(t *testing.T) {
	t.Parallel()

	transcriber := &fakeTranscriber{}
	router := newTestServer(transcriber).Router()

	body, contentType := multipartBody(t, "song.wav", nil)
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.Balanced, transcriber.lastReq.Quality)
	require.Nil(t, transcriber.lastReq.Size)
}

func TestTranscribeEndpointRejectsMissingFile(t *testing.T) {
	t.Parallel()

	router := newTestServer(&fakeTranscriber{}).Router()

	body, contentType := multipartBody(t, "", map[string]string{"quality": "fast"})
	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscribeEndpointRejectsBadEnumValues(t *testing.T) {
	t.Parallel()

	router := newTestServer(&fakeTranscriber{}).Router()

	cases := map[string]map[string]string{
		"bad quality": {"quality": "ludicrous"},
		"bad size":    {"model_size": "tiny"},
	}

	for name, fields := range cases {
		fields := fields
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			body, contentType := multipartBody(t, "a.wav", fields)
			req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTranscribeEndpointMapsFailureKinds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kind       transcribe.Kind
		wantStatus int
	}{
		{transcribe.KindInvalidInput, http.StatusBadRequest},
		{transcribe.KindUnsupportedFormat, http.StatusUnsupportedMediaType},
		{transcribe.KindPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{transcribe.KindCodecUnavailable, http.StatusInternalServerError},
		{transcribe.KindTranscriptionFailed, http.StatusInternalServerError},
		{transcribe.KindInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.kind), func(t *testing.T) {
			t.Parallel()

			transcriber := &fakeTranscriber{failure: transcribe.NewFailure(tc.kind, "boom")}
			router := newTestServer(transcriber).Router()

			body, contentType := multipartBody(t, "a.wav", nil)
			req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			require.Equal(t, "boom", payload["detail"])
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestServer(&fakeTranscriber{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "healthy", payload["status"])
	require.Equal(t, "whisper-small", payload["model"])
	require.Equal(t, "cpu", payload["device"])
	require.Contains(t, payload["supported_formats"], ".mp3")
}

func TestSystemCheckIncludesMemoryCounters(t *testing.T) {
	t.Parallel()

	router := newTestServer(&fakeTranscriber{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/system-check", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	memory, ok := payload["accelerator_memory"].(map[string]any)
	require.True(t, ok)
	require.EqualValues(t, 7, memory["allocatedBytes"])
	require.EqualValues(t, 11, memory["reservedBytes"])
}

func TestPrivacyCheck(t *testing.T) {
	t.Parallel()

	router := newTestServer(&fakeTranscriber{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/privacy-check", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, true, payload["local_processing"])
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	t.Parallel()

	router := newTestServer(&fakeTranscriber{}).Router()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}
