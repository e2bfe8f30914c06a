package model

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lyricsync/scribed/internal/accel"
	"go.uber.org/zap"
)

// Handle is a loaded model bound to the process device. Handles outlive
// individual requests; the registry replaces them as tiers are swapped.
type Handle struct {
	Size   Size
	Device accel.Device
	Path   string
}

// Loader materializes a weight set into a usable handle.
type Loader interface {
	Load(ctx context.Context, size Size) (*Handle, error)
}

// Snapshot is a read-only view of the currently loaded model.
type Snapshot struct {
	Size   Size         `json:"modelSize"`
	Device accel.Device `json:"device"`
}

// Registry owns the single "current model" shared across concurrent
// requests. Load-and-swap is serialized by loadMu so two concurrent loads can
// never tear the current pointer; reads go through an atomic pointer and
// never block behind a load in progress. Two requests racing on different
// tiers is accepted: the last successful load wins.
type Registry struct {
	loader  Loader
	log     *zap.Logger
	loadMu  sync.Mutex
	current atomic.Pointer[Handle]
}

// NewRegistry loads the default size eagerly. A default that cannot load is
// fatal: the service must never start without a working model.
func NewRegistry(ctx context.Context, loader Loader, defaultSize Size, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	r := &Registry{loader: loader, log: log}

	handle, err := loader.Load(ctx, defaultSize)
	if err != nil {
		return nil, fmt.Errorf("load default model %q: %w", defaultSize, err)
	}
	r.current.Store(handle)
	log.Info("default model loaded", zap.String("size", string(handle.Size)), zap.String("device", string(handle.Device)))

	return r, nil
}

// ResolveByQuality resolves a handle for a quality level, or for an explicit
// size when one is given (explicit size always wins).
func (r *Registry) ResolveByQuality(ctx context.Context, quality Quality, explicit *Size) *Handle {
	if explicit != nil {
		return r.ResolveBySize(ctx, *explicit)
	}
	return r.ResolveBySize(ctx, quality.SizeFor())
}

// ResolveBySize returns the handle for size, reusing the current one when it
// already matches. When loading fails the previous handle stays current and
// is returned: a tier-switch failure degrades the request, it never fails
// it. Callers can see which size actually served via the returned handle.
func (r *Registry) ResolveBySize(ctx context.Context, size Size) *Handle {
	if current := r.current.Load(); current.Size == size {
		return current
	}

	r.loadMu.Lock()
	defer r.loadMu.Unlock()

	// Another request may have swapped while we waited for the lock.
	current := r.current.Load()
	if current.Size == size {
		return current
	}

	handle, err := r.loader.Load(ctx, size)
	if err != nil {
		r.log.Warn("degraded model fallback: keeping previously loaded model",
			zap.String("requested", string(size)),
			zap.String("serving", string(current.Size)),
			zap.Error(err),
		)
		return current
	}

	r.current.Store(handle)
	r.log.Info("model swapped", zap.String("size", string(handle.Size)))
	return handle
}

// Snapshot reports the current model without blocking against swaps.
func (r *Registry) Snapshot() Snapshot {
	current := r.current.Load()
	return Snapshot{Size: current.Size, Device: current.Device}
}
