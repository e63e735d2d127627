package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/config"
	"github.com/mgpai22/ass2srt/internal/logging"
)

// commands carrying this annotation run without loading the config file
const skipConfigAnnotation = "skip-config"

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ass2srt",
	Short: "Convert ASS/SSA subtitles to SRT",
	Long: `ass2srt converts Advanced SubStation Alpha subtitles to SubRip.

It converts standalone .ass/.ssa files and the subtitle tracks of Matroska
containers, optionally muxing the converted SRT tracks back into the video.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)
		if cmd.Annotations[skipConfigAnnotation] != "" {
			c := config.Default()
			cfg = &c
			return nil
		}

		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debugw("configuration loaded", "path", path, "exists", exists)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

// runs the root command; SIGINT/SIGTERM cancel in-flight work
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file path (default ~/.config/ass2srt/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code for SRT tracks (e.g., en, ja, es)")
}
