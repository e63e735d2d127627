package cli

import (
	"errors"
	"fmt"

	"github.com/mgpai22/ass2srt/internal/ffmpeg"
	"github.com/mgpai22/ass2srt/internal/journal"
	"github.com/mgpai22/ass2srt/internal/mkv"
	"github.com/mgpai22/ass2srt/internal/video"
	"github.com/mgpai22/ass2srt/internal/workflow"
)

type depNeeds struct {
	containers bool
	mux        bool
	transcode  bool
	journal    bool
}

// resolves tool binaries from config, ASS2SRT_*_PATH and PATH and wires the
// workflow collaborators. The returned func closes the journal.
func buildDeps(needs depNeeds) (workflow.Deps, func(), error) {
	c := currentConfig()
	var deps workflow.Deps
	closeFn := func() {}

	if needs.containers {
		identifier, err := newIdentifier()
		if err != nil {
			return deps, closeFn, err
		}
		deps.Identifier = identifier

		extractor, err := newExtractor()
		if err != nil {
			return deps, closeFn, err
		}
		deps.Extractor = extractor
	}

	if needs.mux {
		muxer, err := newMuxer()
		if err != nil {
			return deps, closeFn, err
		}
		deps.Muxer = muxer
	}

	if needs.transcode {
		processor, err := newProcessor()
		if err != nil {
			return deps, closeFn, err
		}
		deps.Transcoder = processor
	}

	if needs.journal && c.Journal.Enabled {
		j, err := journal.Open(c.Journal.Path)
		if err != nil {
			return deps, closeFn, fmt.Errorf("failed to open journal: %w", err)
		}
		deps.Journal = j
		closeFn = func() {
			if err := j.Close(); err != nil {
				logger.Warnw("failed to close journal", "error", err)
			}
		}
	}

	return deps, closeFn, nil
}

func newIdentifier() (mkv.Identifier, error) {
	c := currentConfig()
	var (
		binary string
		err    error
	)
	switch c.Tools.Identifier {
	case mkv.IdentifierFFprobe:
		binary, err = ffmpeg.FFprobePath(c.Tools.FFprobe)
	default:
		binary, err = ffmpeg.Lookup("mkvmerge", c.Tools.MKVMerge)
	}
	if err != nil {
		return nil, fmt.Errorf("track identifier unavailable: %w", err)
	}
	return mkv.NewIdentifier(c.Tools.Identifier, binary, nil, logger)
}

// mkvextract when installed, ffmpeg stream copy otherwise
func newExtractor() (workflow.Extractor, error) {
	c := currentConfig()
	binary, err := ffmpeg.Lookup("mkvextract", c.Tools.MKVExtract)
	if err == nil {
		return mkv.NewExtractor(binary, nil, logger), nil
	}
	if !errors.Is(err, ffmpeg.ErrNotFound) {
		return nil, err
	}

	logger.Debugw("mkvextract not found, extracting with ffmpeg", "error", err)
	return newProcessor()
}

func newMuxer() (*mkv.Muxer, error) {
	binary, err := ffmpeg.Lookup("mkvmerge", currentConfig().Tools.MKVMerge)
	if err != nil {
		return nil, fmt.Errorf("muxing needs mkvmerge: %w", err)
	}
	return mkv.NewMuxer(binary, nil, logger), nil
}

func newProcessor() (*video.DefaultProcessor, error) {
	path, err := ffmpeg.FFmpegPath(currentConfig().Tools.FFmpeg)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg unavailable: %w", err)
	}
	return video.NewProcessor(path, logger), nil
}
