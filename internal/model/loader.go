package model

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lyricsync/scribed/internal/accel"
	"github.com/lyricsync/scribed/internal/download"
	"go.uber.org/zap"
)

// WeightLoader resolves weight files under the model directory, optionally
// fetching missing ones, and binds handles to the process device.
type WeightLoader struct {
	Dir          string
	Device       accel.Device
	AutoDownload bool
	Log          *zap.Logger

	// fetch is swappable in tests; nil means the real downloader.
	fetch func(ctx context.Context, weight Weight, dest string) error
}

func NewWeightLoader(dir string, device accel.Device, autoDownload bool, log *zap.Logger) *WeightLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &WeightLoader{Dir: dir, Device: device, AutoDownload: autoDownload, Log: log}
}

func (l *WeightLoader) Load(ctx context.Context, size Size) (*Handle, error) {
	weight, err := LookupWeight(size)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(l.Dir, weight.FileName)
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		// Weight file already present.
	case errors.Is(statErr, os.ErrNotExist) && l.AutoDownload:
		l.Log.Info("model weights missing, downloading",
			zap.String("size", string(size)), zap.String("destination", path))
		if err := l.fetchWeight(ctx, weight, path); err != nil {
			return nil, fmt.Errorf("download %s weights: %w", size, err)
		}
	case errors.Is(statErr, os.ErrNotExist):
		return nil, fmt.Errorf("model weights for %q missing at %s; run `scribed setup --model %s` or enable auto_download", size, path, size)
	default:
		return nil, fmt.Errorf("stat model weights: %w", statErr)
	}

	return &Handle{Size: size, Device: l.Device, Path: path}, nil
}

func (l *WeightLoader) fetchWeight(ctx context.Context, weight Weight, dest string) error {
	if l.fetch != nil {
		return l.fetch(ctx, weight, dest)
	}
	return download.File(ctx, download.Options{
		URL:            weight.URL,
		Destination:    dest,
		ExpectedSHA256: weight.SHA256,
		Logger:         l.Log,
	})
}
