package mkv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/mgpai22/ass2srt/internal/logging"
)

const lockRetryDelay = 250 * time.Millisecond

var ErrLocked = errors.New("container is locked by another process")

// one SRT file to add. Language is any code ISO3 understands; an empty Name
// falls back to the language's English name.
type SubtitleTrack struct {
	Path     string
	Language string
	Name     string
}

type MuxRequest struct {
	// source container
	Container string
	// destination; empty replaces Container in place
	Output    string
	Subtitles []SubtitleTrack
	// drop existing ASS/SSA tracks. With StripTrackIDs empty every
	// subtitle track is dropped.
	StripASS      bool
	StripTrackIDs []int
	KeepSidecars  bool
}

type MuxResult struct {
	OutputPath      string
	Muxed           []string
	RemovedSidecars []string
}

// embeds SRT files into a Matroska container with mkvmerge
type Muxer struct {
	Binary string
	run    Runner
	logger *logging.Logger
}

func NewMuxer(binary string, run Runner, logger *logging.Logger) *Muxer {
	return &Muxer{
		Binary: orDefault(binary, "mkvmerge"),
		run:    orExec(run),
		logger: logging.OrNop(logger).Component("mux"),
	}
}

// writes a temporary container next to the output and renames it into place.
// An <output>.lock file serializes concurrent muxes into the same container.
func (m *Muxer) Mux(ctx context.Context, req MuxRequest) (MuxResult, error) {
	if m == nil {
		return MuxResult{}, errors.New("muxer not initialized")
	}
	if strings.TrimSpace(req.Container) == "" {
		return MuxResult{}, errors.New("container path is required")
	}
	if len(req.Subtitles) == 0 {
		return MuxResult{}, errors.New("at least one subtitle path is required")
	}
	if _, err := os.Stat(req.Container); err != nil {
		return MuxResult{}, fmt.Errorf("source container not found: %w", err)
	}
	for _, sub := range req.Subtitles {
		if _, err := os.Stat(sub.Path); err != nil {
			return MuxResult{}, fmt.Errorf("subtitle file not found %q: %w", sub.Path, err)
		}
	}

	output := req.Output
	if output == "" {
		output = req.Container
	}

	lock := flock.New(output + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return MuxResult{}, fmt.Errorf("failed to lock %s: %w", output, err)
	}
	if !locked {
		return MuxResult{}, ErrLocked
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	tmpPath := filepath.Join(filepath.Dir(output), ".mux-"+filepath.Base(output)+".tmp")
	args := m.buildArgs(req, tmpPath)

	m.logger.Debugw("running mkvmerge",
		"container", req.Container,
		"output", output,
		"subtitles", len(req.Subtitles),
		"strip_ass", req.StripASS,
	)

	if _, err := m.run(ctx, m.Binary, args...); err != nil {
		_ = os.Remove(tmpPath)
		return MuxResult{}, fmt.Errorf("mkvmerge failed: %w", err)
	}
	if _, err := os.Stat(tmpPath); err != nil {
		return MuxResult{}, fmt.Errorf("mkvmerge did not produce output file: %w", err)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		_ = os.Remove(tmpPath)
		return MuxResult{}, fmt.Errorf("failed to replace %s: %w", output, err)
	}

	result := MuxResult{OutputPath: output}
	for _, sub := range req.Subtitles {
		result.Muxed = append(result.Muxed, sub.Path)
	}
	if !req.KeepSidecars {
		for _, p := range result.Muxed {
			if err := os.Remove(p); err != nil {
				m.logger.Warnw("failed to remove sidecar after muxing", "path", p, "error", err)
				continue
			}
			result.RemovedSidecars = append(result.RemovedSidecars, p)
		}
	}

	m.logger.Infow("subtitles muxed",
		"output", output,
		"tracks_added", len(result.Muxed),
		"sidecars_removed", len(result.RemovedSidecars),
	)
	return result, nil
}

func (m *Muxer) buildArgs(req MuxRequest, outputPath string) []string {
	args := []string{"-o", outputPath}

	if req.StripASS {
		if len(req.StripTrackIDs) > 0 {
			ids := make([]string, len(req.StripTrackIDs))
			for i, id := range req.StripTrackIDs {
				ids[i] = strconv.Itoa(id)
			}
			args = append(args, "-s", "!"+strings.Join(ids, ","))
		} else {
			args = append(args, "--no-subtitles")
		}
	}
	args = append(args, req.Container)

	for i, sub := range req.Subtitles {
		name := sub.Name
		if name == "" {
			name = DisplayName(sub.Language)
		}
		args = append(args, "--language", "0:"+ISO3(sub.Language))
		args = append(args, "--track-name", "0:"+name)
		if i == 0 {
			args = append(args, "--default-track", "0:yes")
		} else {
			args = append(args, "--default-track", "0:no")
		}
		args = append(args, sub.Path)
	}
	return args
}
