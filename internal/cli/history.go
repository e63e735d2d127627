package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversions from the journal",
	Long: `List the most recent conversions recorded in the journal. Requires
[journal] enabled = true in the config file.

Examples:
  ass2srt history
  ass2srt history -n 50`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	c := currentConfig()
	if !c.Journal.Enabled {
		return errors.New("the journal is disabled; set [journal] enabled = true")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	j, err := journal.Open(c.Journal.Path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()

	entries, err := j.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ConvertedAt.Local().Format(time.DateTime),
			e.SourcePath,
			e.OutputPath,
			strconv.Itoa(e.Blocks),
			e.Charset,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Converted", "Source", "Output", "Blocks", "Charset"}, rows, 3))
	return nil
}
