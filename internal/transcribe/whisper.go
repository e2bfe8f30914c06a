package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WhisperCLI runs transcription through an external whisper-cli process,
// preprocessing the staged asset into 16 kHz mono WAV with ffmpeg first.
type WhisperCLI struct {
	Executable string
	FFmpegPath string
	Log        *zap.Logger
}

// NewWhisperCLI resolves the engine binary: SCRIBED_WHISPER_PATH wins, then
// the configured path, then PATH lookup. A missing engine is fatal at
// startup, not per request.
func NewWhisperCLI(configuredPath string, log *zap.Logger) (*WhisperCLI, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv("SCRIBED_WHISPER_PATH")); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("SCRIBED_WHISPER_PATH is not executable: %w", err)
		}
		return &WhisperCLI{Executable: override, FFmpegPath: "ffmpeg", Log: log}, nil
	}

	if configured := strings.TrimSpace(configuredPath); configured != "" {
		if err := ensureExecutable(configured); err != nil {
			return nil, fmt.Errorf("configured whisper path is not executable: %w", err)
		}
		return &WhisperCLI{Executable: configured, FFmpegPath: "ffmpeg", Log: log}, nil
	}

	path, err := exec.LookPath("whisper-cli")
	if err != nil {
		return nil, fmt.Errorf("whisper-cli not found on PATH; install whisper.cpp or set SCRIBED_WHISPER_PATH: %w", err)
	}

	return &WhisperCLI{Executable: path, FFmpegPath: "ffmpeg", Log: log}, nil
}

func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath, modelPath string, opts DecodingOptions) (string, error) {
	if strings.TrimSpace(audioPath) == "" {
		return "", errors.New("audio path is required")
	}
	if strings.TrimSpace(modelPath) == "" {
		return "", errors.New("model path is required")
	}

	wavPath, err := w.preprocess(ctx, audioPath)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(wavPath); err != nil && !os.IsNotExist(err) {
			w.log().Warn("failed to remove preprocessed audio", zap.String("path", wavPath), zap.Error(err))
		}
	}()

	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("scribed-%d", time.Now().UnixNano()))
	txtOut := outBase + ".txt"
	defer os.Remove(txtOut)

	args := buildEngineArgs(modelPath, wavPath, outBase, opts)

	cmd := exec.CommandContext(ctx, w.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr

	w.log().Debug("running whisper engine", zap.String("engine", w.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper engine failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	content, err := os.ReadFile(txtOut)
	if err != nil {
		return "", fmt.Errorf("read engine output: %w", err)
	}

	return strings.TrimSpace(string(content)), nil
}

// preprocess converts any supported container into the 16 kHz mono WAV the
// engine expects. A missing ffmpeg surfaces as ErrCodecUnavailable.
func (w *WhisperCLI) preprocess(ctx context.Context, audioPath string) (string, error) {
	ffmpeg := w.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	if _, err := exec.LookPath(ffmpeg); err != nil {
		return "", fmt.Errorf("%w: %s not found on PATH", ErrCodecUnavailable, ffmpeg)
	}

	wavPath := filepath.Join(os.TempDir(), fmt.Sprintf("scribed-%d-16k.wav", time.Now().UnixNano()))
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", audioPath,
		"-ar", "16000", "-ac", "1", "-c:a", "pcm_s16le",
		wavPath,
	}

	cmd := exec.CommandContext(ctx, ffmpeg, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(wavPath)
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrCodecUnavailable, err)
		}
		return "", fmt.Errorf("audio decode failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	return wavPath, nil
}

// buildEngineArgs maps DecodingOptions onto whisper-cli flags. The engine's
// entropy threshold plays the role of the compression-ratio ceiling.
func buildEngineArgs(modelPath, wavPath, outBase string, opts DecodingOptions) []string {
	args := []string{
		"-m", modelPath,
		"-f", wavPath,
		"-otxt", "-of", outBase,
		"--temperature", formatFloat(opts.Temperature),
		"--no-speech-thold", formatFloat(opts.NoSpeechThreshold),
		"--logprob-thold", formatFloat(opts.LogProbThreshold),
		"--entropy-thold", formatFloat(opts.CompressionRatioThreshold),
	}
	if !opts.ConditionOnPreviousText {
		args = append(args, "--no-context")
	}
	if !opts.WordTimestamps {
		args = append(args, "-nt")
	}
	return args
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func (w *WhisperCLI) log() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
