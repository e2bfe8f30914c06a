package transcribe

// DecodingOptions are the fixed inference parameters attached to every run.
// They are tuned against hallucination, not exposed to callers.
type DecodingOptions struct {
	// Temperature 0 keeps decoding greedy and deterministic.
	Temperature float64
	// Segments whose no-speech probability exceeds this are suppressed.
	NoSpeechThreshold float64
	// Tokens below this average log probability are dropped.
	LogProbThreshold float64
	// Decoder output beyond this compression ratio is treated as runaway
	// repetition.
	CompressionRatioThreshold float64
	// Carrying context across segments bleeds hallucinations forward.
	ConditionOnPreviousText bool
	WordTimestamps          bool
}

func DefaultDecodingOptions() DecodingOptions {
	return DecodingOptions{
		Temperature:               0,
		NoSpeechThreshold:         0.6,
		LogProbThreshold:          -1.0,
		CompressionRatioThreshold: 2.4,
		ConditionOnPreviousText:   false,
		WordTimestamps:            false,
	}
}
