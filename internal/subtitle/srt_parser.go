package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dimchansky/utfbom"
)

var srtTimingRegex = regexp.MustCompile(
	`^(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})`,
)

// parses an SRT document, accepting ',' or '.' as millisecond separator. A
// leading UTF-8 byte order mark is skipped.
func ReadSRT(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(utfbom.SkipOnly(r))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var currentEntry *Entry
	var haveTiming bool
	var textLines []string
	lineNum := 0

	flush := func() {
		if currentEntry != nil && haveTiming {
			currentEntry.Text = strings.Join(textLines, "\n")
			entries = append(entries, *currentEntry)
		}
		currentEntry = nil
		haveTiming = false
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		if currentEntry == nil {
			index, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				return nil, fmt.Errorf(
					"line %d: expected entry index, got %q",
					lineNum,
					line,
				)
			}
			currentEntry = &Entry{Index: index}
			continue
		}

		if !haveTiming {
			matches := srtTimingRegex.FindStringSubmatch(line)
			if len(matches) != 9 {
				return nil, fmt.Errorf(
					"line %d: invalid timing line %q",
					lineNum,
					line,
				)
			}
			currentEntry.StartTime = parseSRTTimestamp(
				matches[1], matches[2], matches[3], matches[4],
			)
			currentEntry.EndTime = parseSRTTimestamp(
				matches[5], matches[6], matches[7], matches[8],
			)
			haveTiming = true
			continue
		}

		textLines = append(textLines, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT: %w", err)
	}

	return entries, nil
}

// the regex guarantees digit-only groups
func parseSRTTimestamp(hours, minutes, seconds, millis string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(millis)

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}

// verifies that entries are numbered 1..N without gaps and appear in
// chronological order
func Check(entries []Entry) error {
	for i, e := range entries {
		if e.Index != i+1 {
			return fmt.Errorf(
				"entry %d: expected index %d, got %d",
				i+1,
				i+1,
				e.Index,
			)
		}
		if e.EndTime < e.StartTime {
			return fmt.Errorf("entry %d: ends before it starts", e.Index)
		}
		if i == 0 {
			continue
		}
		prev := entries[i-1]
		if e.StartTime < prev.StartTime ||
			(e.StartTime == prev.StartTime && e.EndTime <= prev.EndTime) {
			return fmt.Errorf(
				"entry %d: out of chronological order after entry %d",
				e.Index,
				prev.Index,
			)
		}
	}
	return nil
}
