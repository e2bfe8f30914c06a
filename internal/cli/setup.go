package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lyricsync/scribed/internal/download"
	"github.com/lyricsync/scribed/internal/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSetupCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Download and verify model weights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			size, err := model.ParseSize(app.cfg.DefaultModel)
			if err != nil {
				return err
			}

			weight, err := model.LookupWeight(size)
			if err != nil {
				return err
			}

			modelDir, err := app.modelStorageDir()
			if err != nil {
				return err
			}
			dest := filepath.Join(modelDir, weight.FileName)

			if _, err := os.Stat(dest); err == nil {
				if err := download.VerifyFile(dest, weight.SHA256); err == nil {
					app.log().Info("model already present", zap.String("size", string(size)), zap.String("path", dest))
					fmt.Fprintf(app.outWriter(), "Model %s already present at %s\n", size, dest)
					return nil
				}
				app.log().Warn("model checksum verification failed; downloading fresh copy", zap.String("size", string(size)))
			}

			app.log().Info("downloading model weights", zap.String("size", string(size)), zap.String("path", dest))
			if err := app.fetchWeight(cmd.Context(), weight, dest); err != nil {
				return fmt.Errorf("download model %s: %w", size, err)
			}

			fmt.Fprintf(app.outWriter(), "Model %s installed at %s\n", size, dest)
			return nil
		},
	}
}
