package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/mkv"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks [container]",
	Short: "List the tracks of a Matroska file",
	Long: `List every track of a container with its codec, language and flags.
ASS/SSA tracks are the ones "process" converts.

Examples:
  ass2srt tracks episode.mkv`,
	Args: cobra.ExactArgs(1),
	RunE: runTracks,
}

func init() {
	rootCmd.AddCommand(tracksCmd)
}

func runTracks(cmd *cobra.Command, args []string) error {
	identifier, err := newIdentifier()
	if err != nil {
		return err
	}

	tracks, err := identifier.Identify(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), tracksTable(tracks))
	return nil
}

func tracksTable(tracks []mkv.Track) string {
	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			t.Type,
			t.Codec,
			t.Language,
			t.Name,
			trackFlags(t),
		})
	}
	return renderTable([]string{"ID", "Type", "Codec", "Language", "Name", "Flags"}, rows, 0)
}

func trackFlags(t mkv.Track) string {
	var out string
	add := func(s string) {
		if out != "" {
			out += ","
		}
		out += s
	}
	if t.Default {
		add("default")
	}
	if t.Forced {
		add("forced")
	}
	switch {
	case t.IsASS():
		add("convertible")
	case t.IsSRT():
		add("srt")
	}
	return out
}
