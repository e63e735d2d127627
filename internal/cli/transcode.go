package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var transcodeCmd = &cobra.Command{
	Use:   "transcode [video_file]",
	Short: "Re-encode the video stream of a container",
	Long: `Re-encode the video stream with ffmpeg, copying audio and subtitle streams.
Defaults come from the [transcode] section of the config file.

Examples:
  ass2srt transcode episode.mkv
  ass2srt transcode episode.mkv --codec libx265 --crf 24 -o small.mkv`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscode,
}

func init() {
	rootCmd.AddCommand(transcodeCmd)
	addTranscodeFlags(transcodeCmd)
}

func runTranscode(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + ".transcoded" + ext
	}
	if filepath.Clean(outputPath) == filepath.Clean(inputPath) {
		return fmt.Errorf("output must differ from input")
	}

	opts := transcodeOptions(cmd)
	processor, err := newProcessor()
	if err != nil {
		return err
	}

	if err := processor.Transcode(cmd.Context(), inputPath, outputPath, opts); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Transcoded successfully: %s\n", absOutput)
	return nil
}
