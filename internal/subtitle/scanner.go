package subtitle

import "strings"

type sectionState int

const (
	stateIdle sectionState = iota
	stateInEvents
)

type sectionInput int

const (
	inputEventsHeader sectionInput = iota
	inputOtherHeader
)

// next state indexed by [current][input]
var sectionTransitions = [2][2]sectionState{
	stateIdle: {
		inputEventsHeader: stateInEvents,
		inputOtherHeader:  stateIdle,
	},
	stateInEvents: {
		inputEventsHeader: stateInEvents,
		inputOtherHeader:  stateIdle,
	},
}

// tracks which section of an ASS document is being read
type sectionScanner struct {
	state     sectionState
	sawEvents bool
}

// consumes one line and reports whether it belongs to the Events section
// body. Section headers themselves are never passed through.
func (s *sectionScanner) feed(line string) bool {
	name, ok := sectionHeader(line)
	if !ok {
		return s.state == stateInEvents
	}

	input := inputOtherHeader
	if strings.EqualFold(name, "Events") {
		input = inputEventsHeader
		s.sawEvents = true
	}
	s.state = sectionTransitions[s.state][input]
	return false
}

func (s *sectionScanner) inEvents() bool {
	return s.state == stateInEvents
}

func sectionHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 2 ||
		!strings.HasPrefix(trimmed, "[") ||
		!strings.HasSuffix(trimmed, "]") {
		return "", false
	}
	return strings.TrimSpace(trimmed[1 : len(trimmed)-1]), true
}
