// Package transcribe stages uploads, drives the recognition engine, and
// post-processes transcripts for one request at a time.
package transcribe

import (
	"context"
	"errors"
	"io"

	"github.com/lyricsync/scribed/internal/accel"
	"github.com/lyricsync/scribed/internal/model"
	"go.uber.org/zap"
)

// Selector resolves a loaded model for a request.
type Selector interface {
	ResolveByQuality(ctx context.Context, quality model.Quality, explicit *model.Size) *model.Handle
}

// Cleaner post-processes raw transcripts.
type Cleaner interface {
	Clean(text string) string
}

// Bracketer wraps the inference call with device-memory accounting.
type Bracketer interface {
	Bracket(ctx context.Context, fn func() (string, error)) (string, error)
}

// Request is one end-to-end transcription request.
type Request struct {
	Stream   io.Reader
	Filename string
	Quality  model.Quality
	// Size, when set, overrides the quality-derived tier.
	Size *model.Size
}

// Result reports the cleaned transcript and which model actually served it,
// which may differ from the requested tier after a degraded fallback.
type Result struct {
	Text       string
	ServedSize model.Size
	Device     accel.Device
}

// Orchestrator composes staging, model selection, recognition, and cleaning.
// Dependencies are injected at construction.
type Orchestrator struct {
	selector   Selector
	recognizer Recognizer
	accountant Bracketer
	cleaner    Cleaner
	staging    StagingConfig
	opts       DecodingOptions
	log        *zap.Logger
}

func NewOrchestrator(selector Selector, recognizer Recognizer, accountant Bracketer, cleaner Cleaner, staging StagingConfig, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		selector:   selector,
		recognizer: recognizer,
		accountant: accountant,
		cleaner:    cleaner,
		staging:    staging,
		opts:       DefaultDecodingOptions(),
		log:        log,
	}
}

// Transcribe runs one request: validate, stage, resolve model, recognize,
// clean. The staged asset is removed on every path out of this method.
func (o *Orchestrator) Transcribe(ctx context.Context, req Request) (Result, *Failure) {
	asset, failure := StageAsset(req.Stream, req.Filename, o.staging, o.log)
	if failure != nil {
		return Result{}, failure
	}
	defer asset.Remove()

	handle := o.selector.ResolveByQuality(ctx, req.Quality, req.Size)

	o.log.Info("transcribing",
		zap.String("filename", req.Filename),
		zap.String("quality", string(req.Quality)),
		zap.String("model", string(handle.Size)),
		zap.String("device", string(handle.Device)),
	)

	raw, err := o.accountant.Bracket(ctx, func() (string, error) {
		return o.recognizer.Transcribe(ctx, asset.Path(), handle.Path, o.opts)
	})
	if err != nil {
		return Result{}, classifyEngineError(err)
	}

	return Result{
		Text:       o.cleaner.Clean(raw),
		ServedSize: handle.Size,
		Device:     handle.Device,
	}, nil
}

func classifyEngineError(err error) *Failure {
	if errors.Is(err, ErrCodecUnavailable) {
		return WrapFailure(KindCodecUnavailable, err,
			"ffmpeg is required but was not found; install ffmpeg and ensure it is on PATH")
	}
	if failure, ok := AsFailure(err); ok {
		return failure
	}
	return WrapFailure(KindTranscriptionFailed, err, "transcription failed")
}
