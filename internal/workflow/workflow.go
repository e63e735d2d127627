package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/ass2srt/internal/journal"
	"github.com/mgpai22/ass2srt/internal/logging"
	"github.com/mgpai22/ass2srt/internal/mkv"
	"github.com/mgpai22/ass2srt/internal/subtitle"
	"github.com/mgpai22/ass2srt/internal/video"
)

// AllTracks selects every ASS/SSA track of a container.
const AllTracks = -1

type Extractor interface {
	Extract(ctx context.Context, container string, trackID int, outPath string) error
}

type Muxer interface {
	Mux(ctx context.Context, req mkv.MuxRequest) (mkv.MuxResult, error)
}

type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string, opts video.TranscodeOptions) error
}

// conversion history; satisfied by *journal.Journal
type Journal interface {
	Unchanged(ctx context.Context, sourcePath, fingerprint string) (bool, error)
	Record(ctx context.Context, e journal.Entry) error
}

// collaborators; Transcoder and Journal may be nil
type Deps struct {
	Identifier mkv.Identifier
	Extractor  Extractor
	Muxer      Muxer
	Transcoder Transcoder
	Journal    Journal
}

type Options struct {
	Convert subtitle.Options

	// track id to convert, AllTracks for every ASS/SSA track
	Track int
	// overrides the language tag of the source tracks
	Language  string
	TrackName string
	StripASS  bool
	// write SRT sidecars next to the container instead of muxing
	NoMux bool
	// destination container; empty muxes in place
	Output string
	// convert even when the container already carries SRT
	Force bool

	Transcode        bool
	TranscodeOptions video.TranscodeOptions

	SkipUnchanged bool
}

func DefaultOptions() Options {
	return Options{
		Convert:          subtitle.DefaultOptions(),
		Track:            AllTracks,
		StripASS:         true,
		TranscodeOptions: video.DefaultTranscodeOptions(),
	}
}

type Status string

const (
	StatusConverted Status = "converted"
	StatusSkipped   Status = "skipped"
	StatusUnchanged Status = "unchanged"
	StatusFailed    Status = "failed"
)

// outcome for one input file
type Report struct {
	Path     string
	Status   Status
	Reason   string
	Outputs  []string
	Events   int
	Skipped  int
	Blocks   int
	Charset  string
	Duration time.Duration
	Err      error
}

type Runner struct {
	deps   Deps
	opts   Options
	logger *logging.Logger
}

func New(deps Deps, opts Options, logger *logging.Logger) *Runner {
	return &Runner{
		deps:   deps,
		opts:   opts,
		logger: logging.OrNop(logger).Component("workflow"),
	}
}

// dispatches on the file type: containers go through Process, everything
// else through ConvertFile
func (r *Runner) Handle(ctx context.Context, path string) (Report, error) {
	if mkv.IsContainer(path) {
		return r.Process(ctx, path)
	}
	return r.ConvertFile(ctx, path, "")
}

// converts a standalone ASS/SSA file. An empty outputPath writes next to the
// input with an .srt extension.
func (r *Runner) ConvertFile(ctx context.Context, inputPath, outputPath string) (Report, error) {
	started := time.Now()
	report := Report{Path: inputPath}
	if outputPath == "" {
		outputPath = subtitle.OutputPathFor(inputPath)
	}

	fingerprint, unchanged, err := r.checkUnchanged(ctx, inputPath)
	if err != nil {
		return r.fail(report, started, err)
	}
	if unchanged {
		report.Status = StatusUnchanged
		report.Reason = "already converted"
		report.Duration = time.Since(started)
		return report, nil
	}

	opts := r.opts.Convert
	opts.Logger = r.logger
	res, err := subtitle.Convert(inputPath, outputPath, opts)
	if err != nil {
		return r.fail(report, started, err)
	}

	report.Status = StatusConverted
	report.Outputs = []string{outputPath}
	report.absorb(res)
	r.record(ctx, inputPath, fingerprint, outputPath, res, "")
	report.Duration = time.Since(started)
	return report, nil
}

// converts the ASS/SSA tracks of a container to SRT and muxes them back, or
// leaves them as sidecars with NoMux
func (r *Runner) Process(ctx context.Context, container string) (Report, error) {
	started := time.Now()
	report := Report{Path: container}

	if r.deps.Identifier == nil || r.deps.Extractor == nil {
		return r.fail(report, started, errors.New("workflow needs an identifier and an extractor"))
	}
	if !r.opts.NoMux && r.deps.Muxer == nil {
		return r.fail(report, started, errors.New("workflow needs a muxer unless muxing is disabled"))
	}

	fingerprint, unchanged, err := r.checkUnchanged(ctx, container)
	if err != nil {
		return r.fail(report, started, err)
	}
	if unchanged {
		report.Status = StatusUnchanged
		report.Reason = "already processed"
		report.Duration = time.Since(started)
		return report, nil
	}

	tracks, err := r.deps.Identifier.Identify(ctx, container)
	if err != nil {
		return r.fail(report, started, err)
	}
	if mkv.HasSRT(tracks) && !r.opts.Force {
		report.Status = StatusSkipped
		report.Reason = "container already has an SRT track"
		report.Duration = time.Since(started)
		return report, nil
	}

	selected, err := selectTracks(tracks, r.opts.Track)
	if err != nil {
		return r.fail(report, started, err)
	}
	if len(selected) == 0 {
		report.Status = StatusSkipped
		report.Reason = "no ASS/SSA tracks"
		report.Duration = time.Since(started)
		return report, nil
	}

	runID := uuid.NewString()
	log := r.logger.With("run_id", runID, "container", container)
	workDir, err := os.MkdirTemp("", "ass2srt-"+runID[:8]+"-")
	if err != nil {
		return r.fail(report, started, fmt.Errorf("failed to create work directory: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warnw("failed to remove work directory", "dir", workDir, "error", err)
		}
	}()

	subs, err := r.convertTracks(ctx, container, workDir, selected, &report, log)
	if err != nil {
		return r.fail(report, started, err)
	}

	if r.opts.NoMux {
		for _, s := range subs {
			report.Outputs = append(report.Outputs, s.Path)
		}
	} else {
		output, err := r.mux(ctx, container, workDir, tracks, subs, log)
		if err != nil {
			return r.fail(report, started, err)
		}
		report.Outputs = []string{output}
		if fp, err := journal.Fingerprint(output); err == nil {
			fingerprint = fp
		}
	}

	report.Status = StatusConverted
	r.record(ctx, container, fingerprint, strings.Join(report.Outputs, ";"), subtitle.Result{
		Events:  report.Events,
		Skipped: report.Skipped,
		Blocks:  report.Blocks,
		Charset: report.Charset,
	}, runID)
	report.Duration = time.Since(started)
	log.Infow("container processed", "tracks", len(subs), "blocks", report.Blocks, "elapsed", report.Duration)
	return report, nil
}

func (r *Runner) convertTracks(
	ctx context.Context,
	container, workDir string,
	tracks []mkv.Track,
	report *Report,
	log *logging.Logger,
) ([]mkv.SubtitleTrack, error) {
	sidecarDir := workDir
	if r.opts.NoMux {
		sidecarDir = filepath.Dir(container)
	}
	names := sidecarNames(container, tracks, r.opts.Language)

	opts := r.opts.Convert
	opts.Logger = log

	subs := make([]mkv.SubtitleTrack, 0, len(tracks))
	for i, t := range tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		assPath := filepath.Join(workDir, "track"+strconv.Itoa(t.ID)+t.Extension())
		if err := r.deps.Extractor.Extract(ctx, container, t.ID, assPath); err != nil {
			return nil, err
		}

		srtPath := filepath.Join(sidecarDir, names[i])
		res, err := subtitle.Convert(assPath, srtPath, opts)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", t.ID, err)
		}
		report.absorb(res)
		log.Debugw("track converted", "track", t.ID, "blocks", res.Blocks, "skipped", res.Skipped)

		name := r.opts.TrackName
		if name == "" {
			name = t.Name
		}
		subs = append(subs, mkv.SubtitleTrack{
			Path:     srtPath,
			Language: trackLanguage(t, r.opts.Language),
			Name:     name,
		})
	}
	return subs, nil
}

func (r *Runner) mux(
	ctx context.Context,
	container, workDir string,
	tracks []mkv.Track,
	subs []mkv.SubtitleTrack,
	log *logging.Logger,
) (string, error) {
	source := container
	if r.opts.Transcode {
		if r.deps.Transcoder == nil {
			return "", errors.New("transcoding requested without a transcoder")
		}
		source = filepath.Join(workDir, "transcoded"+filepath.Ext(container))
		if err := r.deps.Transcoder.Transcode(ctx, container, source, r.opts.TranscodeOptions); err != nil {
			return "", err
		}
		log.Debugw("video transcoded", "output", source)
	}

	output := r.opts.Output
	if output == "" {
		output = container
	}

	req := mkv.MuxRequest{
		Container: source,
		Output:    output,
		Subtitles: subs,
		StripASS:  r.opts.StripASS,
	}
	if r.opts.StripASS {
		for _, t := range mkv.ASSTracks(tracks) {
			req.StripTrackIDs = append(req.StripTrackIDs, t.ID)
		}
	}

	res, err := r.deps.Muxer.Mux(ctx, req)
	if err != nil {
		return "", err
	}
	return res.OutputPath, nil
}

func (r *Runner) checkUnchanged(ctx context.Context, path string) (string, bool, error) {
	if r.deps.Journal == nil {
		return "", false, nil
	}
	fingerprint, err := journal.Fingerprint(path)
	if err != nil {
		return "", false, &subtitle.IOError{Op: "stat", Path: path, Err: err}
	}
	if !r.opts.SkipUnchanged {
		return fingerprint, false, nil
	}
	unchanged, err := r.deps.Journal.Unchanged(ctx, path, fingerprint)
	if err != nil {
		r.logger.Warnw("journal lookup failed", "path", path, "error", err)
		return fingerprint, false, nil
	}
	return fingerprint, unchanged, nil
}

func (r *Runner) record(ctx context.Context, source, fingerprint, output string, res subtitle.Result, runID string) {
	if r.deps.Journal == nil {
		return
	}
	err := r.deps.Journal.Record(ctx, journal.Entry{
		SourcePath:  source,
		Fingerprint: fingerprint,
		OutputPath:  output,
		Blocks:      res.Blocks,
		Skipped:     res.Skipped,
		Charset:     res.Charset,
		RunID:       runID,
	})
	if err != nil {
		r.logger.Warnw("failed to update journal", "path", source, "error", err)
	}
}

func (r *Runner) fail(report Report, started time.Time, err error) (Report, error) {
	report.Status = StatusFailed
	report.Err = err
	report.Reason = err.Error()
	report.Duration = time.Since(started)
	r.logger.Errorw("conversion failed", "path", report.Path, "error", err)
	return report, err
}

func (rep *Report) absorb(res subtitle.Result) {
	rep.Events += res.Events
	rep.Skipped += res.Skipped
	rep.Blocks += res.Blocks
	if rep.Charset == "" {
		rep.Charset = res.Charset
	}
}

func selectTracks(tracks []mkv.Track, id int) ([]mkv.Track, error) {
	if id == AllTracks {
		return mkv.ASSTracks(tracks), nil
	}
	for _, t := range tracks {
		if t.ID != id {
			continue
		}
		if !t.IsASS() {
			return nil, fmt.Errorf("track %d is not an ASS/SSA subtitle track (codec %s)", id, t.Codec)
		}
		return []mkv.Track{t}, nil
	}
	return nil, fmt.Errorf("track %d not found", id)
}

func trackLanguage(t mkv.Track, override string) string {
	if override != "" {
		return override
	}
	if t.Language != "" {
		return t.Language
	}
	return "und"
}

// <base>.<lang>.srt, with the track id appended when two tracks share a language
func sidecarNames(container string, tracks []mkv.Track, override string) []string {
	base := strings.TrimSuffix(filepath.Base(container), filepath.Ext(container))

	counts := make(map[string]int, len(tracks))
	for _, t := range tracks {
		counts[trackLanguage(t, override)]++
	}

	names := make([]string, len(tracks))
	for i, t := range tracks {
		lang := trackLanguage(t, override)
		if counts[lang] > 1 {
			names[i] = fmt.Sprintf("%s.%s.%d.srt", base, lang, t.ID)
		} else {
			names[i] = fmt.Sprintf("%s.%s.srt", base, lang)
		}
	}
	return names
}
