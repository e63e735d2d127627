package subtitle

import (
	"fmt"
	"strings"
)

// how a merged block treats text that repeats under the same timecode
type DedupPolicy int

const (
	// skip text identical to a line already in the block
	DedupExact DedupPolicy = iota
	// always append
	DedupNone
	// skip text contained anywhere in the block's accumulated text, which
	// also collapses styling variants of the same line
	DedupSubstring
)

func (p DedupPolicy) String() string {
	switch p {
	case DedupExact:
		return "exact"
	case DedupNone:
		return "none"
	case DedupSubstring:
		return "substring"
	default:
		return fmt.Sprintf("DedupPolicy(%d)", int(p))
	}
}

func ParseDedupPolicy(s string) (DedupPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exact":
		return DedupExact, nil
	case "none", "always":
		return DedupNone, nil
	case "substring":
		return DedupSubstring, nil
	default:
		return DedupExact, fmt.Errorf(
			"unknown dedup policy %q: use exact, none, or substring",
			s,
		)
	}
}

type block struct {
	key   string
	lines []string
}

// merges events by timecode key, keeping first-seen key order and document
// order of text within a key
type Aggregator struct {
	policy DedupPolicy
	blocks []block
	index  map[string]int
}

func NewAggregator(policy DedupPolicy) *Aggregator {
	return &Aggregator{
		policy: policy,
		index:  make(map[string]int),
	}
}

// records text under key and reports whether it was kept
func (a *Aggregator) Add(key, text string) bool {
	i, ok := a.index[key]
	if !ok {
		a.index[key] = len(a.blocks)
		a.blocks = append(a.blocks, block{key: key, lines: []string{text}})
		return true
	}

	b := &a.blocks[i]
	if a.duplicate(b.lines, text) {
		return false
	}
	b.lines = append(b.lines, text)
	return true
}

func (a *Aggregator) duplicate(lines []string, text string) bool {
	switch a.policy {
	case DedupNone:
		return false
	case DedupSubstring:
		return strings.Contains(strings.Join(lines, "\n"), text)
	default:
		for _, line := range lines {
			if line == text {
				return true
			}
		}
		return false
	}
}

// number of distinct timecode keys
func (a *Aggregator) Len() int {
	return len(a.blocks)
}

// keys in insertion order
func (a *Aggregator) Keys() []string {
	keys := make([]string, len(a.blocks))
	for i, b := range a.blocks {
		keys[i] = b.key
	}
	return keys
}

// text merged under key, in insertion order
func (a *Aggregator) Lines(key string) []string {
	i, ok := a.index[key]
	if !ok {
		return nil
	}
	out := make([]string, len(a.blocks[i].lines))
	copy(out, a.blocks[i].lines)
	return out
}
