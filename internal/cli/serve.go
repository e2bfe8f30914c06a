package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lyricsync/scribed/internal/accel"
	"github.com/lyricsync/scribed/internal/diag"
	"github.com/lyricsync/scribed/internal/httpapi"
	"github.com/lyricsync/scribed/internal/model"
	"github.com/lyricsync/scribed/internal/textclean"
	"github.com/lyricsync/scribed/internal/transcribe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the transcription HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runServe(cmd.Context())
		},
	}

	bindServeFlags(cmd, app)
	return cmd
}

func (a *appState) runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := a.log()

	device := accel.Detect(log)
	allocator := accel.NewAllocator(device)
	accountant := accel.NewAccountant(allocator, log)

	modelDir, err := a.modelStorageDir()
	if err != nil {
		return err
	}

	defaultSize, err := model.ParseSize(a.cfg.DefaultModel)
	if err != nil {
		return fmt.Errorf("invalid default model in config: %w", err)
	}

	loader := model.NewWeightLoader(modelDir, device, a.cfg.AutoDownload, log)
	registry, err := model.NewRegistry(ctx, loader, defaultSize, log)
	if err != nil {
		return err
	}

	engine, err := transcribe.NewWhisperCLI(a.cfg.WhisperPath, log)
	if err != nil {
		return err
	}

	orchestrator := transcribe.NewOrchestrator(
		registry,
		engine,
		accountant,
		textclean.NewCleaner(log),
		transcribe.StagingConfig{
			MaxBytes:         a.cfg.MaxUploadBytes,
			SupportedFormats: a.cfg.SortedFormats(),
		},
		log,
	)

	checker := diag.NewChecker(engine.Executable)
	api := httpapi.NewServer(orchestrator, registry, accountant, checker, a.cfg, log)

	server := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started",
			zap.String("addr", server.Addr),
			zap.String("device", string(device)),
			zap.String("model", string(defaultSize)),
			zap.String("model_dir", filepath.Clean(modelDir)),
		)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server crashed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
