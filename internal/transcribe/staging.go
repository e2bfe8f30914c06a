package transcribe

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// StagingConfig bounds what uploads are accepted for staging.
type StagingConfig struct {
	MaxBytes         int64
	SupportedFormats []string
}

func (c StagingConfig) supports(ext string) bool {
	for _, supported := range c.SupportedFormats {
		if ext == strings.ToLower(supported) {
			return true
		}
	}
	return false
}

// StagedAsset is the request-scoped on-disk copy of an upload. It never
// outlives its request: the orchestrator removes it on every exit path.
type StagedAsset struct {
	path    string
	log     *zap.Logger
	removed bool
}

func (s *StagedAsset) Path() string {
	return s.path
}

// Remove deletes the staged file. It is idempotent, and deletion failures
// are logged rather than escalated so cleanup never masks a primary error.
func (s *StagedAsset) Remove() {
	if s == nil || s.removed {
		return
	}
	s.removed = true

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove staged asset", zap.String("path", s.path), zap.Error(err))
		return
	}
	s.log.Debug("staged asset removed", zap.String("path", s.path))
}

// StageAsset copies an upload into a scoped temporary file, keeping the
// original extension so the codec tool can sniff the container. Validation
// failures happen before anything touches the disk; an over-limit payload
// leaves no file behind.
func StageAsset(stream io.Reader, filename string, cfg StagingConfig, log *zap.Logger) (*StagedAsset, *Failure) {
	if log == nil {
		log = zap.NewNop()
	}

	if strings.TrimSpace(filename) == "" {
		return nil, NewFailure(KindInvalidInput, "no file provided")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !cfg.supports(ext) {
		return nil, NewFailure(KindUnsupportedFormat,
			"unsupported file format %q (supported: %s)", ext, strings.Join(cfg.SupportedFormats, ", "))
	}

	tempFile, err := os.CreateTemp("", "scribed-upload-*"+ext)
	if err != nil {
		return nil, WrapFailure(KindInternal, err, "failed to stage uploaded file")
	}

	asset := &StagedAsset{path: tempFile.Name(), log: log}

	written, err := io.Copy(tempFile, io.LimitReader(stream, cfg.MaxBytes+1))
	closeErr := tempFile.Close()

	switch {
	case err != nil:
		asset.Remove()
		return nil, WrapFailure(KindInternal, err, "failed to stage uploaded file")
	case closeErr != nil:
		asset.Remove()
		return nil, WrapFailure(KindInternal, closeErr, "failed to stage uploaded file")
	case written > cfg.MaxBytes:
		asset.Remove()
		return nil, NewFailure(KindPayloadTooLarge,
			"file too large, maximum size is %.1fMB", float64(cfg.MaxBytes)/1024/1024)
	}

	log.Debug("upload staged",
		zap.String("filename", filename),
		zap.String("path", asset.path),
		zap.Int64("bytes", written),
	)
	return asset, nil
}
