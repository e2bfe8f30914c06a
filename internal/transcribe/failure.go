package transcribe

import (
	"errors"
	"fmt"
)

// Kind discriminates expected failure conditions. The HTTP layer maps kinds
// to status codes; this package only names the reason.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindUnsupportedFormat   Kind = "unsupported_format"
	KindPayloadTooLarge     Kind = "payload_too_large"
	KindCodecUnavailable    Kind = "codec_unavailable"
	KindTranscriptionFailed Kind = "transcription_failed"
	KindInternal            Kind = "internal_error"
)

// Failure is the discriminated result returned for expected error
// conditions instead of a raw error.
type Failure struct {
	Kind    Kind
	Message string
	err     error
}

func NewFailure(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapFailure(kind Kind, err error, message string) *Failure {
	return &Failure{Kind: kind, Message: message, err: err}
}

func (f *Failure) Error() string {
	if f.err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.err
}

// AsFailure extracts a Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
