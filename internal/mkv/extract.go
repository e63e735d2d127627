package mkv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mgpai22/ass2srt/internal/logging"
)

// pulls single tracks out of a container with mkvextract
type Extractor struct {
	Binary string
	run    Runner
	logger *logging.Logger
}

func NewExtractor(binary string, run Runner, logger *logging.Logger) *Extractor {
	return &Extractor{
		Binary: orDefault(binary, "mkvextract"),
		run:    orExec(run),
		logger: logging.OrNop(logger).Component("extract"),
	}
}

func (e *Extractor) Extract(ctx context.Context, container string, trackID int, outPath string) error {
	if trackID < 0 {
		return fmt.Errorf("invalid track id %d", trackID)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	spec := strconv.Itoa(trackID) + ":" + outPath
	e.logger.Debugw("extracting track", "container", container, "track", trackID, "output", outPath)

	if _, err := e.run(ctx, e.Binary, container, "tracks", spec); err != nil {
		_ = os.Remove(outPath)
		return fmt.Errorf("failed to extract track %d: %w", trackID, err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("mkvextract did not produce %s: %w", outPath, err)
	}
	return nil
}
