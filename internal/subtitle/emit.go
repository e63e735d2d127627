package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// one numbered SRT block
type SRTEntry struct {
	Index int
	Key   string
	Lines []string
}

// sorts merged blocks chronologically and numbers them from 1. Keys are
// fixed-width, so string order is time order.
func (a *Aggregator) Entries() []SRTEntry {
	sorted := make([]block, len(a.blocks))
	copy(sorted, a.blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].key < sorted[j].key
	})

	entries := make([]SRTEntry, len(sorted))
	for i, b := range sorted {
		lines := make([]string, len(b.lines))
		copy(lines, b.lines)
		entries[i] = SRTEntry{
			Index: i + 1,
			Key:   b.key,
			Lines: lines,
		}
	}
	return entries
}

// serializes entries as SRT. commaDecimal renders the millisecond separator
// as ',' for players that insist on strict SubRip timing lines.
func WriteSRT(w io.Writer, entries []SRTEntry, commaDecimal bool) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		key := e.Key
		if commaDecimal {
			key = strings.ReplaceAll(key, ".", ",")
		}
		if _, err := fmt.Fprintf(bw, "%d\n%s\n", e.Index, key); err != nil {
			return err
		}
		for _, line := range e.Lines {
			if _, err := bw.WriteString(line + "\n"); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
