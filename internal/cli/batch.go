package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/mkv"
	"github.com/mgpai22/ass2srt/internal/subtitle"
	"github.com/mgpai22/ass2srt/internal/workflow"
)

var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Convert many ASS/SSA files in parallel",
	Long: `Convert every ASS/SSA file named on the command line. Directories are
searched recursively. With --containers, Matroska files are processed as well
(see "ass2srt process").

One file failing never stops the others; the command exits non-zero when any
file failed.

Examples:
  ass2srt batch season1/
  ass2srt batch *.ass -j 8 --skip-unchanged
  ass2srt batch library/ --containers --no-mux`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addConvertFlags(batchCmd)
	addBatchFlags(batchCmd)

	batchCmd.Flags().
		Bool("containers", false, "Also process .mkv/.webm files found in the given paths")
	batchCmd.Flags().
		Bool("no-mux", false, "Keep converted container tracks as SRT sidecars")
}

func runBatch(cmd *cobra.Command, args []string) error {
	withContainers, _ := cmd.Flags().GetBool("containers")
	paths, err := collectInputs(args, withContainers)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no subtitle files found")
	}

	opts, err := workflowOptions(cmd)
	if err != nil {
		return err
	}
	// every input keeps its own output next to it
	opts.Output = ""

	deps, closeJournal, err := buildDeps(depNeeds{
		containers: withContainers,
		mux:        withContainers && !opts.NoMux,
		journal:    true,
	})
	if err != nil {
		return err
	}
	defer closeJournal()

	workers := concurrency(cmd)
	logger.Infow("Starting batch conversion", "files", len(paths), "concurrency", workers)

	runner := workflow.New(deps, opts, logger)
	reports, batchErr := workflow.RunBatch(cmd.Context(), paths, workers, runner.Handle)

	fmt.Fprintln(cmd.OutOrStdout(), summaryTable(reports))
	fmt.Fprintln(cmd.OutOrStdout(), summaryLine(reports))
	return batchErr
}

// expands directories into the subtitle (and optionally container) files
// below them; explicit file arguments are kept as given
func collectInputs(args []string, withContainers bool) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("file not found: %s", arg)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if subtitle.IsASSFile(p) || (withContainers && mkv.IsContainer(p)) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	return paths, nil
}
