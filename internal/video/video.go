package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/ass2srt/internal/logging"
)

// defines interface for ffmpeg backed operations on containers
type Processor interface {
	// re-encodes the video stream, copying audio and subtitles
	Transcode(ctx context.Context, inputPath, outputPath string, opts TranscodeOptions) error

	// copies one subtitle stream out of a container
	Extract(ctx context.Context, container string, streamIndex int, outputPath string) error
}

// holds options for transcoding
type TranscodeOptions struct {
	VideoCodec string // e.g. libx264, libx265
	CRF        int
	Preset     string
	AudioCodec string // "copy" keeps the source audio
	Locale     string // LC_ALL / LC_NUMERIC for the ffmpeg process
}

func DefaultTranscodeOptions() TranscodeOptions {
	return TranscodeOptions{
		VideoCodec: "libx264",
		CRF:        20,
		Preset:     "medium",
		AudioCodec: "copy",
		Locale:     "C",
	}
}

type commandRunner func(ctx context.Context, name string, args, env []string) error

// default implementation using ffmpeg
type DefaultProcessor struct {
	ffmpegPath string
	run        commandRunner
	logger     *logging.Logger
}

func NewProcessor(ffmpegPath string, logger *logging.Logger) *DefaultProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &DefaultProcessor{
		ffmpegPath: ffmpegPath,
		run:        runFFmpeg,
		logger:     logging.OrNop(logger).Component("ffmpeg"),
	}
}

func (p *DefaultProcessor) Transcode(
	ctx context.Context,
	inputPath, outputPath string,
	opts TranscodeOptions,
) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", inputPath)
	}
	if strings.TrimSpace(opts.VideoCodec) == "" {
		return errors.New("video codec is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := transcodeArgs(inputPath, outputPath, opts)
	p.logger.Infow("transcoding",
		"input", inputPath,
		"output", outputPath,
		"codec", opts.VideoCodec,
		"crf", opts.CRF,
	)

	if err := p.run(ctx, p.ffmpegPath, args, localeEnv(opts.Locale)); err != nil {
		_ = os.Remove(outputPath)
		return fmt.Errorf("ffmpeg transcode failed: %w", err)
	}
	return nil
}

func (p *DefaultProcessor) Extract(
	ctx context.Context,
	container string,
	streamIndex int,
	outputPath string,
) error {
	if streamIndex < 0 {
		return fmt.Errorf("invalid stream index %d", streamIndex)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := extractArgs(container, streamIndex, outputPath)
	p.logger.Debugw("extracting subtitle stream", "container", container, "stream", streamIndex)

	if err := p.run(ctx, p.ffmpegPath, args, nil); err != nil {
		_ = os.Remove(outputPath)
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}
	return nil
}

func transcodeArgs(inputPath, outputPath string, opts TranscodeOptions) []string {
	kwargs := ffmpeg.KwArgs{
		"map": "0",
		"c:v": opts.VideoCodec,
		"c:s": "copy",
	}
	if opts.CRF > 0 {
		kwargs["crf"] = opts.CRF
	}
	if opts.Preset != "" {
		kwargs["preset"] = opts.Preset
	}
	kwargs["c:a"] = "copy"
	if opts.AudioCodec != "" {
		kwargs["c:a"] = opts.AudioCodec
	}

	return ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		GetArgs()
}

func extractArgs(container string, streamIndex int, outputPath string) []string {
	return ffmpeg.Input(container).
		Output(outputPath, ffmpeg.KwArgs{
			"map": "0:" + strconv.Itoa(streamIndex),
			"c:s": "copy",
		}).
		OverWriteOutput().
		GetArgs()
}

// the child process formats numbers under this locale; nothing in this
// process reads it
func localeEnv(locale string) []string {
	if locale == "" {
		return nil
	}
	return []string{"LC_ALL=" + locale, "LC_NUMERIC=" + locale}
}

func runFFmpeg(ctx context.Context, name string, args, env []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, lastLines(string(output), 5))
	}
	return nil
}

// ffmpeg prints the banner and progress first; the cause is at the end
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
