// Command scenechat serves the scripted scene conversation over websocket
// and gRPC, and offers terminal tools around the same engine.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/scenechat/internal/config"
	"github.com/danielpatrickdp/scenechat/internal/corpus"
	"github.com/danielpatrickdp/scenechat/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "scenechat",
	Short: "Scripted scene conversations",
	Long: `scenechat answers prompts from a fixed dataset of scenes.

A prompt is matched against scene keywords (falling back to a substring
search), and the paired scene's text is typed back to the visitor.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		var opts []logging.Option
		if cmd.Name() == "chat" {
			opts = append(opts, logging.WithoutConsole())
		}
		logger, err = logging.New(cfg.Log, opts...)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd, chatCmd, matchCmd, replayCmd, inspectCmd)
}

// loadLibrary reads the configured dataset once. A broken dataset is logged
// and leaves the library holding the empty corpus.
func loadLibrary(ctx context.Context, opts ...corpus.LibraryOption) *corpus.Library {
	lib := corpus.NewLibrary(corpus.FileSource{Path: cfg.Dataset.Path}, logger, opts...)
	_, _ = lib.Reload(ctx)
	return lib
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
