package subtitle

import (
	"time"

	"github.com/mgpai22/ass2srt/internal/charset"
	"github.com/mgpai22/ass2srt/internal/logging"
)

// represents single parsed SRT entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// controls a single ASS to SRT conversion
type Options struct {
	Dedup        DedupPolicy
	StyleMarkers bool
	CommaDecimal bool
	Charset      string
	Logger       *logging.Logger
}

func DefaultOptions() Options {
	return Options{
		Dedup:        DedupExact,
		StyleMarkers: true,
		Charset:      charset.Auto,
	}
}

// summary of a finished conversion
type Result struct {
	// dialogue events that survived text cleanup
	Events int
	// dialogue events dropped because no visible text remained
	Skipped int
	// numbered blocks written after merging equal timecodes
	Blocks int
	// input encoding the document was decoded from
	Charset string
}
