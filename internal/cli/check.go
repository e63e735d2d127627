package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/subtitle"
)

var checkCmd = &cobra.Command{
	Use:   "check [srt_files...]",
	Short: "Validate SRT files",
	Long: `Parse SRT files and verify that blocks are numbered 1..N without gaps,
end times are not before start times and blocks are in chronological order.

Examples:
  ass2srt check episode.srt
  ass2srt check out/*.srt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		count, err := checkFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok   %s (%d blocks)\n", path, count)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}

func checkFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	entries, err := subtitle.ReadSRT(f)
	if err != nil {
		return 0, err
	}
	if err := subtitle.Check(entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
