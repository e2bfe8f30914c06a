// Package accel binds the process to a compute device at startup and
// accounts for accelerator memory around inference calls.
package accel

import (
	"os/exec"

	"go.uber.org/zap"
)

type Device string

const (
	CPU  Device = "cpu"
	CUDA Device = "cuda"
)

func (d Device) IsAccelerator() bool {
	return d == CUDA
}

// Detect probes for an NVIDIA accelerator once at startup. The result is
// process-wide and never changes per request.
func Detect(log *zap.Logger) Device {
	return detectWith(log, exec.LookPath)
}

func detectWith(log *zap.Logger, lookPath func(string) (string, error)) Device {
	if log == nil {
		log = zap.NewNop()
	}

	path, err := lookPath("nvidia-smi")
	if err != nil {
		log.Warn("no accelerator detected, falling back to CPU")
		return CPU
	}

	log.Info("accelerator detected, using GPU for inference", zap.String("nvidia_smi", path))
	return CUDA
}
