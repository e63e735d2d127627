package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/mkv"
)

var muxCmd = &cobra.Command{
	Use:   "mux [container] [srt_files...]",
	Short: "Embed SRT files into a Matroska container",
	Long: `Add SRT files to a container with mkvmerge. The container is replaced
atomically unless --output names a different file.

Examples:
  ass2srt mux episode.mkv episode.en.srt --language en
  ass2srt mux episode.mkv episode.srt --keep-ass -o muxed.mkv`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMux,
}

func init() {
	rootCmd.AddCommand(muxCmd)

	muxCmd.Flags().String("track-name", "", "Track name (defaults to the language name)")
	muxCmd.Flags().Bool("keep-ass", false, "Keep the container's existing ASS/SSA tracks")
	muxCmd.Flags().Bool("keep-sidecar", false, "Keep the SRT files after muxing")
}

func runMux(cmd *cobra.Command, args []string) error {
	container := args[0]
	c := currentConfig()

	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")
	if language == "" {
		language = c.Mux.Language
	}
	trackName := c.Mux.TrackName
	if cmd.Flags().Changed("track-name") {
		trackName, _ = cmd.Flags().GetString("track-name")
	}
	strip := c.Mux.StripASS
	if cmd.Flags().Changed("keep-ass") {
		keep, _ := cmd.Flags().GetBool("keep-ass")
		strip = !keep
	}
	keepSidecar := c.Mux.KeepSidecar
	if cmd.Flags().Changed("keep-sidecar") {
		keepSidecar, _ = cmd.Flags().GetBool("keep-sidecar")
	}

	muxer, err := newMuxer()
	if err != nil {
		return err
	}

	req := mkv.MuxRequest{
		Container:    container,
		Output:       outputPath,
		StripASS:     strip,
		KeepSidecars: keepSidecar,
	}
	for _, p := range args[1:] {
		req.Subtitles = append(req.Subtitles, mkv.SubtitleTrack{Path: p, Language: language, Name: trackName})
	}

	if strip {
		// strip only ASS/SSA, not other subtitle formats
		identifier, err := newIdentifier()
		if err != nil {
			return err
		}
		tracks, err := identifier.Identify(cmd.Context(), container)
		if err != nil {
			return err
		}
		for _, t := range mkv.ASSTracks(tracks) {
			req.StripTrackIDs = append(req.StripTrackIDs, t.ID)
		}
		req.StripASS = len(req.StripTrackIDs) > 0
	}

	result, err := muxer.Mux(cmd.Context(), req)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Muxed %d subtitle track(s) into %s\n", len(result.Muxed), result.OutputPath)
	return nil
}
