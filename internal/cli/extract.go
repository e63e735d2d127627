package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/mkv"
	"github.com/mgpai22/ass2srt/internal/subtitle"
)

var extractCmd = &cobra.Command{
	Use:   "extract [container]",
	Short: "Extract an ASS/SSA track from a Matroska file",
	Long: `Extract one subtitle track from a container as a standalone file.

Without --track the first ASS/SSA track is used. When the output path ends in
.srt the extracted track is converted as well.

Examples:
  ass2srt extract episode.mkv
  ass2srt extract episode.mkv --track 3 -o signs.ass
  ass2srt extract episode.mkv -o episode.en.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addConvertFlags(extractCmd)

	extractCmd.Flags().
		IntP("track", "t", -1, "Track id to extract (see \"ass2srt tracks\")")
}

func runExtract(cmd *cobra.Command, args []string) error {
	container := args[0]
	trackID, _ := cmd.Flags().GetInt("track")
	outputPath, _ := cmd.Flags().GetString("output")

	identifier, err := newIdentifier()
	if err != nil {
		return err
	}
	extractor, err := newExtractor()
	if err != nil {
		return err
	}

	tracks, err := identifier.Identify(cmd.Context(), container)
	if err != nil {
		return err
	}
	track, err := pickTrack(tracks, trackID)
	if err != nil {
		return err
	}

	if outputPath == "" {
		base := strings.TrimSuffix(container, filepath.Ext(container))
		outputPath = base + "." + strconv.Itoa(track.ID) + track.Extension()
	}
	convert := strings.EqualFold(filepath.Ext(outputPath), ".srt")

	assPath := outputPath
	if convert {
		assPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + track.Extension()
	}

	logger.Infow("Extracting track",
		"container", container,
		"track", track.ID,
		"codec", track.Codec,
		"output", outputPath,
	)

	if err := extractor.Extract(cmd.Context(), container, track.ID, assPath); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if convert {
		opts, err := subtitleOptions(cmd)
		if err != nil {
			return err
		}
		res, err := subtitle.Convert(assPath, outputPath, opts)
		if err != nil {
			return fmt.Errorf("conversion failed: %w", err)
		}
		logger.Debugw("extracted track converted", "blocks", res.Blocks, "skipped", res.Skipped)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Track %d extracted successfully: %s\n", track.ID, absOutput)
	return nil
}

func pickTrack(tracks []mkv.Track, id int) (mkv.Track, error) {
	if id < 0 {
		ass := mkv.ASSTracks(tracks)
		if len(ass) == 0 {
			return mkv.Track{}, fmt.Errorf("no ASS/SSA tracks found")
		}
		return ass[0], nil
	}
	for _, t := range tracks {
		if t.ID == id {
			if !t.IsSubtitle() {
				return mkv.Track{}, fmt.Errorf("track %d is a %s track, not subtitles", id, t.Type)
			}
			return t, nil
		}
	}
	return mkv.Track{}, fmt.Errorf("track %d not found", id)
}
