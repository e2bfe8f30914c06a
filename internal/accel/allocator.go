package accel

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Counters is a read-only snapshot of accelerator memory usage.
type Counters struct {
	AllocatedBytes int64 `json:"allocatedBytes"`
	ReservedBytes  int64 `json:"reservedBytes"`
}

// Allocator is the external device-memory capability the accountant drives.
type Allocator interface {
	Device() Device
	FlushCache(ctx context.Context) error
	Counters(ctx context.Context) (Counters, error)
}

// NewAllocator returns the production allocator for the bound device.
func NewAllocator(device Device) Allocator {
	if device == CUDA {
		return &nvidiaAllocator{query: runNvidiaSMI}
	}
	return noopAllocator{}
}

// noopAllocator backs the CPU device: no scarce memory to track or release.
type noopAllocator struct{}

func (noopAllocator) Device() Device                   { return CPU }
func (noopAllocator) FlushCache(context.Context) error { return nil }

func (noopAllocator) Counters(context.Context) (Counters, error) {
	return Counters{}, nil
}

// nvidiaAllocator reads device memory counters via nvidia-smi. Inference runs
// in a separate process, so cached allocations are returned to the driver
// when that process exits; FlushCache has nothing extra to release here.
type nvidiaAllocator struct {
	query func(ctx context.Context) (string, error)
}

func (a *nvidiaAllocator) Device() Device { return CUDA }

func (a *nvidiaAllocator) FlushCache(context.Context) error { return nil }

func (a *nvidiaAllocator) Counters(ctx context.Context) (Counters, error) {
	out, err := a.query(ctx)
	if err != nil {
		return Counters{}, fmt.Errorf("query device memory: %w", err)
	}
	return parseCounters(out)
}

func runNvidiaSMI(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=memory.used,memory.reserved",
		"--format=csv,noheader,nounits")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// parseCounters reads the first line of nvidia-smi CSV output; values are
// reported in MiB.
func parseCounters(out string) (Counters, error) {
	line := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return Counters{}, fmt.Errorf("unexpected nvidia-smi output %q", line)
	}

	used, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return Counters{}, fmt.Errorf("parse used memory: %w", err)
	}
	reserved, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return Counters{}, fmt.Errorf("parse reserved memory: %w", err)
	}

	const mib = 1024 * 1024
	return Counters{AllocatedBytes: used * mib, ReservedBytes: reserved * mib}, nil
}
