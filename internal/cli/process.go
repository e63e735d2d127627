package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/workflow"
)

var processCmd = &cobra.Command{
	Use:   "process [containers...]",
	Short: "Convert the ASS/SSA tracks of Matroska files to SRT",
	Long: `For each container: identify its tracks, extract every ASS/SSA track,
convert it to SRT and mux the result back (in place unless --output is set).
Containers that already carry an SRT track are skipped unless --force.

With --no-mux the SRT files are written next to the container as
<name>.<lang>.srt instead. --transcode re-encodes the video before muxing.

Examples:
  ass2srt process episode.mkv
  ass2srt process season1/*.mkv -j 2 --no-mux
  ass2srt process episode.mkv --track 3 --language en --keep-ass
  ass2srt process episode.mkv --transcode --crf 22 -o episode.x264.mkv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	addConvertFlags(processCmd)
	addBatchFlags(processCmd)
	addTranscodeFlags(processCmd)

	processCmd.Flags().
		IntP("track", "t", workflow.AllTracks, "Only convert this track id")
	processCmd.Flags().
		Bool("no-mux", false, "Write SRT sidecars instead of muxing")
	processCmd.Flags().
		Bool("keep-ass", false, "Keep the original ASS/SSA tracks when muxing")
	processCmd.Flags().
		Bool("force", false, "Convert even when an SRT track already exists")
	processCmd.Flags().
		Bool("transcode", false, "Re-encode the video before muxing")
	processCmd.Flags().
		String("track-name", "", "Track name for the muxed SRT tracks")
}

func runProcess(cmd *cobra.Command, args []string) error {
	opts, err := workflowOptions(cmd)
	if err != nil {
		return err
	}
	if len(args) > 1 && opts.Output != "" {
		return fmt.Errorf("--output needs a single container")
	}

	deps, closeJournal, err := buildDeps(depNeeds{
		containers: true,
		mux:        !opts.NoMux,
		transcode:  opts.Transcode,
		journal:    true,
	})
	if err != nil {
		return err
	}
	defer closeJournal()

	runner := workflow.New(deps, opts, logger)

	if len(args) == 1 {
		report, err := runner.Process(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), summaryTable([]workflow.Report{report}))
		return nil
	}

	workers := concurrency(cmd)
	logger.Infow("Processing containers", "files", len(args), "concurrency", workers)

	reports, batchErr := workflow.RunBatch(cmd.Context(), args, workers, runner.Process)
	fmt.Fprintln(cmd.OutOrStdout(), summaryTable(reports))
	fmt.Fprintln(cmd.OutOrStdout(), summaryLine(reports))
	return batchErr
}
