// Package model maps caller-facing quality and size choices onto concrete
// recognition model weights and owns the process-wide loaded-model state.
package model

import (
	"fmt"
	"strings"
)

// Size names a weight-set tier of the recognition model.
type Size string

const (
	Small  Size = "small"
	Medium Size = "medium"
	Large  Size = "large"
)

// Quality is the caller-facing speed/accuracy preference, independent of the
// underlying weight-set naming.
type Quality string

const (
	Fast     Quality = "fast"
	Balanced Quality = "balanced"
	High     Quality = "high"
	Best     Quality = "best"
)

const DefaultQuality = Balanced

func Sizes() []Size {
	return []Size{Small, Medium, Large}
}

func Qualities() []Quality {
	return []Quality{Fast, Balanced, High, Best}
}

func ParseSize(value string) (Size, error) {
	switch Size(strings.ToLower(strings.TrimSpace(value))) {
	case Small:
		return Small, nil
	case Medium:
		return Medium, nil
	case Large:
		return Large, nil
	default:
		return "", fmt.Errorf("unknown model size %q (choose from: small, medium, large)", value)
	}
}

func ParseQuality(value string) (Quality, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return DefaultQuality, nil
	}
	switch Quality(trimmed) {
	case Fast:
		return Fast, nil
	case Balanced:
		return Balanced, nil
	case High:
		return High, nil
	case Best:
		return Best, nil
	default:
		return "", fmt.Errorf("unknown quality level %q (choose from: fast, balanced, high, best)", value)
	}
}

// SizeFor maps a quality level to its default weight tier.
func (q Quality) SizeFor() Size {
	switch q {
	case Fast, Balanced:
		return Small
	case High:
		return Medium
	case Best:
		return Large
	default:
		return Small
	}
}

// Description returns the user-facing explanation of a quality level.
func (q Quality) Description() string {
	switch q {
	case Fast:
		return "Fast (less accurate, smallest model)"
	case Balanced:
		return "Balanced (recommended)"
	case High:
		return "High quality (medium model)"
	case Best:
		return "Best quality (large model, slow)"
	default:
		return string(q)
	}
}
