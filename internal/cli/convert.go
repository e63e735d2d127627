package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/subtitle"
	"github.com/mgpai22/ass2srt/internal/workflow"
)

var convertCmd = &cobra.Command{
	Use:   "convert [subtitle_file]",
	Short: "Convert an ASS/SSA file to SRT",
	Long: `Convert a single Advanced SubStation Alpha file to SubRip.

Dialogue events sharing a timecode are merged into one block, override tags
are removed and bold/italic/underline become <b>/<i>/<u> tags. Use "-" to read
from stdin and write to stdout.

Examples:
  ass2srt convert episode.ass
  ass2srt convert episode.ass -o out/episode.srt
  ass2srt convert legacy.ssa --charset windows-1252 --comma
  cat episode.ass | ass2srt convert - > episode.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	addConvertFlags(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath, _ := cmd.Flags().GetString("output")

	opts, err := subtitleOptions(cmd)
	if err != nil {
		return err
	}

	if inputPath == "-" {
		res, err := subtitle.ConvertReader(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		if err != nil {
			return err
		}
		logger.Debugw("converted stdin", "blocks", res.Blocks, "skipped", res.Skipped, "charset", res.Charset)
		return nil
	}

	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	deps, closeJournal, err := buildDeps(depNeeds{journal: true})
	if err != nil {
		return err
	}
	defer closeJournal()

	wopts := workflow.DefaultOptions()
	wopts.Convert = opts
	wopts.SkipUnchanged = currentConfig().Batch.SkipUnchanged

	logger.Infow("Converting subtitles", "input", inputPath, "output", outputPath, "dedup", opts.Dedup.String())

	report, err := workflow.New(deps, wopts, logger).ConvertFile(cmd.Context(), inputPath, outputPath)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if report.Status == workflow.StatusUnchanged {
		fmt.Fprintf(cmd.OutOrStdout(), "Unchanged since last conversion: %s\n", inputPath)
		return nil
	}

	absOutput, _ := filepath.Abs(report.Outputs[0])
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s: %d blocks (%d empty events skipped, %s)\n",
		absOutput, report.Blocks, report.Skipped, report.Charset)
	return nil
}
