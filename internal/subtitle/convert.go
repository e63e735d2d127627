package subtitle

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgpai22/ass2srt/internal/charset"
	"github.com/mgpai22/ass2srt/internal/logging"
)

const (
	formatPrefix   = "Format:"
	dialoguePrefix = "Dialogue:"

	maxLineSize = 4 * 1024 * 1024
)

// converts the ASS document at inputPath into an SRT file at outputPath.
// Output is written to a temporary file and renamed into place, so a failed
// conversion never leaves a partial or empty file behind.
func Convert(inputPath, outputPath string, opts Options) (Result, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return Result{}, &IOError{Op: "open", Path: inputPath, Err: err}
	}
	defer func() {
		_ = in.Close()
	}()

	entries, result, err := Parse(in, opts)
	if err != nil {
		return result, err
	}

	if err := writeFileAtomic(outputPath, entries, opts.CommaDecimal); err != nil {
		return result, err
	}

	logging.OrNop(opts.Logger).Debugw("Wrote SRT",
		"input", inputPath,
		"output", outputPath,
		"events", result.Events,
		"skipped", result.Skipped,
		"blocks", result.Blocks,
		"charset", result.Charset,
	)
	return result, nil
}

// streaming variant of Convert. Nothing is written to w unless the whole
// document parses.
func ConvertReader(r io.Reader, w io.Writer, opts Options) (Result, error) {
	entries, result, err := Parse(r, opts)
	if err != nil {
		return result, err
	}
	if err := WriteSRT(w, entries, opts.CommaDecimal); err != nil {
		return result, &IOError{Op: "write output", Err: err}
	}
	return result, nil
}

// reads an ASS document in a single pass and returns the numbered SRT entries
func Parse(r io.Reader, opts Options) ([]SRTEntry, Result, error) {
	logger := logging.OrNop(opts.Logger)

	decoded, det, err := charset.NewReader(r, opts.Charset)
	if err != nil {
		return nil, Result{}, &IOError{Op: "decode input", Err: err}
	}
	result := Result{Charset: det.Charset}
	if det.Charset != charset.UTF8 {
		logger.Debugw("Decoding input",
			"charset", det.Charset,
			"confidence", det.Confidence,
		)
	}

	var (
		scanner = bufio.NewScanner(decoded)
		state   sectionScanner
		spec    *FormatSpec
		agg     = NewAggregator(opts.Dedup)
		lineNum int
	)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if !state.feed(line) {
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, formatPrefix):
			if spec != nil {
				continue
			}
			spec, err = ParseFormat(strings.TrimPrefix(trimmed, formatPrefix))
			if err != nil {
				return nil, result, &ParseError{Line: lineNum, Err: err}
			}

		case strings.HasPrefix(trimmed, dialoguePrefix):
			if spec == nil {
				return nil, result, &ParseError{Line: lineNum, Err: ErrMissingFormat}
			}
			kept, err := addDialogue(agg, spec, strings.TrimPrefix(trimmed, dialoguePrefix), opts)
			if err != nil {
				return nil, result, &ParseError{Line: lineNum, Err: err}
			}
			if !kept {
				result.Skipped++
				logger.Debugw("Skipping dialogue with no visible text",
					"line", lineNum,
				)
				continue
			}
			result.Events++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, result, &IOError{Op: "read input", Err: err}
	}
	if !state.sawEvents {
		return nil, result, ErrMissingEventsSection
	}

	entries := agg.Entries()
	result.Blocks = len(entries)
	return entries, result, nil
}

// returns false when the text is empty after cleanup
func addDialogue(agg *Aggregator, spec *FormatSpec, rest string, opts Options) (bool, error) {
	d, err := spec.ParseDialogue(rest)
	if err != nil {
		return false, err
	}

	key, err := TimecodeKey(d.Start(), d.End())
	if err != nil {
		return false, err
	}

	text := NormalizeText(d.Text(), opts.StyleMarkers)
	if text == "" {
		return false, nil
	}

	agg.Add(key, text)
	return true, nil
}

func writeFileAtomic(path string, entries []SRTEntry, commaDecimal bool) error {
	if err := ensureDir(path); err != nil {
		return &IOError{Op: "create output directory for", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".ass2srt-*.srt.tmp")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := WriteSRT(tmp, entries, commaDecimal); err != nil {
		cleanup()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Chmod(0644); err != nil {
		cleanup()
		return &IOError{Op: "chmod", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "rename output to", Path: path, Err: err}
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// builds the default output path for an ASS input: same base name, .srt
func OutputPathFor(inputPath string) string {
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".srt"
}

// reports whether path has an ASS or SSA extension
func IsASSFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ass", ".ssa":
		return true
	}
	return false
}
