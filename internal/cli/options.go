package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/config"
	"github.com/mgpai22/ass2srt/internal/subtitle"
	"github.com/mgpai22/ass2srt/internal/video"
	"github.com/mgpai22/ass2srt/internal/workflow"
)

// registers the flags shared by every command that converts subtitles
func addConvertFlags(cmd *cobra.Command) {
	cmd.Flags().
		String("dedup", "", "Duplicate text handling within a timecode (exact, none, substring)")
	cmd.Flags().
		Bool("no-style", false, "Drop bold/italic/underline instead of emitting <b>/<i>/<u> tags")
	cmd.Flags().
		Bool("comma", false, "Use ',' as the millisecond separator in timing lines")
	cmd.Flags().
		String("charset", "", "Input encoding (auto, utf-8, windows-1252, shift_jis, ...)")
}

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().
		IntP("concurrency", "j", 0, "Number of files converted in parallel")
	cmd.Flags().
		Bool("skip-unchanged", false, "Skip inputs the journal has already converted")
}

func currentConfig() *config.Config {
	if cfg == nil {
		c := config.Default()
		return &c
	}
	return cfg
}

// config file values overridden by any flag the user set
func subtitleOptions(cmd *cobra.Command) (subtitle.Options, error) {
	opts, err := currentConfig().SubtitleOptions()
	if err != nil {
		return subtitle.Options{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("dedup") {
		value, _ := flags.GetString("dedup")
		policy, err := subtitle.ParseDedupPolicy(value)
		if err != nil {
			return subtitle.Options{}, err
		}
		opts.Dedup = policy
	}
	if flags.Changed("no-style") {
		noStyle, _ := flags.GetBool("no-style")
		opts.StyleMarkers = !noStyle
	}
	if flags.Changed("comma") {
		opts.CommaDecimal, _ = flags.GetBool("comma")
	}
	if flags.Changed("charset") {
		opts.Charset, _ = flags.GetString("charset")
	}
	opts.Logger = logger
	return opts, nil
}

func transcodeOptions(cmd *cobra.Command) video.TranscodeOptions {
	c := currentConfig().Transcode
	opts := video.TranscodeOptions{
		VideoCodec: c.VideoCodec,
		CRF:        c.CRF,
		Preset:     c.Preset,
		AudioCodec: c.AudioCodec,
		Locale:     c.Locale,
	}

	flags := cmd.Flags()
	if flags.Lookup("codec") == nil {
		return opts
	}
	if flags.Changed("codec") {
		opts.VideoCodec, _ = flags.GetString("codec")
	}
	if flags.Changed("crf") {
		opts.CRF, _ = flags.GetInt("crf")
	}
	if flags.Changed("preset") {
		opts.Preset, _ = flags.GetString("preset")
	}
	if flags.Changed("audio-codec") {
		opts.AudioCodec, _ = flags.GetString("audio-codec")
	}
	if flags.Changed("locale") {
		opts.Locale, _ = flags.GetString("locale")
	}
	return opts
}

func addTranscodeFlags(cmd *cobra.Command) {
	cmd.Flags().String("codec", "", "Video codec (e.g., libx264, libx265)")
	cmd.Flags().Int("crf", 0, "Constant rate factor")
	cmd.Flags().String("preset", "", "Encoder preset (e.g., medium, slow)")
	cmd.Flags().String("audio-codec", "", "Audio codec, or copy")
	cmd.Flags().String("locale", "", "LC_ALL/LC_NUMERIC for the ffmpeg process")
}

// language flag, then [mux] language unless it is the undetermined default
func languageOverride(cmd *cobra.Command) string {
	if lang, _ := cmd.Flags().GetString("language"); lang != "" {
		return lang
	}
	if l := currentConfig().Mux.Language; l != "" && l != "und" {
		return l
	}
	return ""
}

func workflowOptions(cmd *cobra.Command) (workflow.Options, error) {
	convertOpts, err := subtitleOptions(cmd)
	if err != nil {
		return workflow.Options{}, err
	}

	c := currentConfig()
	opts := workflow.DefaultOptions()
	opts.Convert = convertOpts
	opts.Language = languageOverride(cmd)
	opts.TrackName = c.Mux.TrackName
	opts.StripASS = c.Mux.StripASS
	opts.NoMux = c.Mux.KeepSidecar
	opts.SkipUnchanged = c.Batch.SkipUnchanged
	opts.TranscodeOptions = transcodeOptions(cmd)
	opts.Output, _ = cmd.Flags().GetString("output")

	flags := cmd.Flags()
	if flags.Lookup("track") != nil {
		opts.Track, _ = flags.GetInt("track")
	}
	if flags.Changed("no-mux") {
		opts.NoMux, _ = flags.GetBool("no-mux")
	}
	if flags.Changed("keep-ass") {
		keep, _ := flags.GetBool("keep-ass")
		opts.StripASS = !keep
	}
	if flags.Changed("force") {
		opts.Force, _ = flags.GetBool("force")
	}
	if flags.Changed("transcode") {
		opts.Transcode, _ = flags.GetBool("transcode")
	}
	if flags.Changed("skip-unchanged") {
		opts.SkipUnchanged, _ = flags.GetBool("skip-unchanged")
	}
	if flags.Changed("track-name") {
		opts.TrackName, _ = flags.GetString("track-name")
	}

	if opts.Transcode && opts.NoMux {
		return workflow.Options{}, fmt.Errorf("--transcode needs muxing; drop --no-mux")
	}
	return opts, nil
}

func concurrency(cmd *cobra.Command) int {
	if cmd.Flags().Changed("concurrency") {
		n, _ := cmd.Flags().GetInt("concurrency")
		return n
	}
	return currentConfig().Batch.Concurrency
}
