// Package cli wires configuration, logging, and the transcription service
// behind the scribed command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lyricsync/scribed/internal/config"
	"github.com/lyricsync/scribed/internal/download"
	"github.com/lyricsync/scribed/internal/logging"
	"github.com/lyricsync/scribed/internal/model"
	"github.com/lyricsync/scribed/internal/platform"
	"github.com/lyricsync/scribed/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type appState struct {
	configPath string
	host       string
	port       int
	modelName  string
	modelDir   string
	logLevel   string
	jsonLogs   bool
	noProgress bool

	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer

	// fetchFn is swappable in tests; nil means the real downloader.
	fetchFn func(ctx context.Context, weight model.Weight, dest string) error
}

func NewRootCmd() *cobra.Command {
	app := &appState{out: os.Stdout}

	cmd := &cobra.Command{
		Use:           "scribed",
		Short:         "Local HTTP service that transcribes audio with a whisper engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.initialize()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runServe(cmd.Context())
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindConfigFlags(cmd, app)
	bindServeFlags(cmd, app)

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindConfigFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().StringVar(&app.configPath, "config", "", "Path to the YAML config file")
	cmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&app.jsonLogs, "json", false, "Enable JSON logging")
	cmd.PersistentFlags().BoolVar(&app.noProgress, "no-progress", false, "Disable progress indicators")
	cmd.PersistentFlags().StringVar(&app.modelName, "model", "", "Default model size: small|medium|large")
	cmd.PersistentFlags().StringVar(&app.modelDir, "model-dir", "", "Directory where model weights are stored")
}

func bindServeFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.host, "host", "", "Listen host")
	cmd.Flags().IntVar(&app.port, "port", 0, "Listen port")
}

// initialize loads the effective config and builds the logger. Flags beat
// config file and environment values when set.
func (a *appState) initialize() error {
	configPath := a.configPath
	if configPath == "" {
		resolved, err := platform.DefaultConfigPath()
		if err == nil {
			configPath = resolved
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if a.host != "" {
		cfg.Host = a.host
	}
	if a.port != 0 {
		cfg.Port = a.port
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.modelName != "" {
		cfg.DefaultModel = a.modelName
	}
	if a.modelDir != "" {
		cfg.ModelDir = a.modelDir
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: a.jsonLogs})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	a.logger = logger

	return nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func (a *appState) modelStorageDir() (string, error) {
	dir, err := platform.ResolveModelDir(a.cfg.ModelDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory %s: %w", dir, err)
	}
	return dir, nil
}

func (a *appState) fetchWeight(ctx context.Context, weight model.Weight, dest string) error {
	if a.fetchFn != nil {
		return a.fetchFn(ctx, weight, dest)
	}
	return download.File(ctx, download.Options{
		URL:            weight.URL,
		Destination:    dest,
		ExpectedSHA256: weight.SHA256,
		NoProgress:     a.noProgress,
		Logger:         a.log(),
	})
}
