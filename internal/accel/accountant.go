package accel

import (
	"context"

	"go.uber.org/zap"
)

// Accountant brackets an inference call with accelerator cache flushes and
// memory snapshots. On CPU it is a pure pass-through.
type Accountant struct {
	alloc Allocator
	log   *zap.Logger
}

func NewAccountant(alloc Allocator, log *zap.Logger) *Accountant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accountant{alloc: alloc, log: log}
}

// Snapshot exposes current memory counters for diagnostics, read-only.
func (a *Accountant) Snapshot(ctx context.Context) (Counters, error) {
	return a.alloc.Counters(ctx)
}

// Bracket runs fn between a pre-flush and a post-flush of the accelerator
// allocation cache. The post step runs on every exit path, including when fn
// fails. Flush and counter errors are logged, never escalated: accounting
// must not fail a transcription.
func (a *Accountant) Bracket(ctx context.Context, fn func() (string, error)) (string, error) {
	if !a.alloc.Device().IsAccelerator() {
		return fn()
	}

	a.flush(ctx, "before inference")
	defer a.flush(ctx, "after inference")

	return fn()
}

func (a *Accountant) flush(ctx context.Context, stage string) {
	if err := a.alloc.FlushCache(ctx); err != nil {
		a.log.Warn("accelerator cache flush failed", zap.String("stage", stage), zap.Error(err))
	}

	counters, err := a.alloc.Counters(ctx)
	if err != nil {
		a.log.Warn("accelerator memory query failed", zap.String("stage", stage), zap.Error(err))
		return
	}

	a.log.Info("accelerator memory",
		zap.String("stage", stage),
		zap.Int64("allocated_bytes", counters.AllocatedBytes),
		zap.Int64("reserved_bytes", counters.ReservedBytes),
	)
}
