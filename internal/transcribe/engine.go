package transcribe

import (
	"context"
	"errors"
)

// ErrCodecUnavailable marks a missing external decode tool; the orchestrator
// surfaces it with operator install instructions.
var ErrCodecUnavailable = errors.New("audio codec tool unavailable")

// Recognizer is the opaque speech-recognition capability.
type Recognizer interface {
	Transcribe(ctx context.Context, audioPath, modelPath string, opts DecodingOptions) (string, error)
}
