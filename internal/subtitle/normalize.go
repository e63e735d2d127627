package subtitle

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// style markers are carried through the cleanup steps as private-use runes so
// that the angle-bracket strip cannot touch them
const (
	markBoldOpen      = '\uE000'
	markBoldClose     = '\uE001'
	markItalicOpen    = '\uE002'
	markItalicClose   = '\uE003'
	markUnderlineOpen = '\uE004'
	markUnderlineEnd  = '\uE005'
)

var (
	overrideBlockRe = regexp.MustCompile(`\{[^}]*\}`)
	styleCodeRe     = regexp.MustCompile(`\\([biu])(\d+)`)
	lineBreakRe     = regexp.MustCompile(`\s*(?:\\[Nn]\s*)+`)
	tabEscapeRe     = regexp.MustCompile(`\\[tT]`)
	otherEscapeRe   = regexp.MustCompile(`(?s)\\.?`)

	markerRunes = strings.NewReplacer(
		string(markBoldOpen), "",
		string(markBoldClose), "",
		string(markItalicOpen), "",
		string(markItalicClose), "",
		string(markUnderlineOpen), "",
		string(markUnderlineEnd), "",
	)
	angleBrackets = strings.NewReplacer("<", "", ">", "")
	emptyPairs    = strings.NewReplacer(
		string(markBoldOpen)+string(markBoldClose), "",
		string(markItalicOpen)+string(markItalicClose), "",
		string(markUnderlineOpen)+string(markUnderlineEnd), "",
	)

	markerTags = strings.NewReplacer(
		string(markBoldOpen), "<b>",
		string(markBoldClose), "</b>",
		string(markItalicOpen), "<i>",
		string(markItalicClose), "</i>",
		string(markUnderlineOpen), "<u>",
		string(markUnderlineEnd), "</u>",
	)
)

const tabSpaces = "        "

type styleToggle struct {
	on, off rune
}

var styleToggles = map[string]styleToggle{
	"b": {markBoldOpen, markBoldClose},
	"i": {markItalicOpen, markItalicClose},
	"u": {markUnderlineOpen, markUnderlineEnd},
}

// reduces an ASS text field to SRT text. With styleMarkers set, bold, italic
// and underline toggles become properly nested <b>, <i> and <u> tags; every
// other override is dropped. An empty result means the event carries no
// visible text, even when it only toggled styles.
func NormalizeText(raw string, styleMarkers bool) string {
	text := markerRunes.Replace(raw)

	if styleMarkers {
		text = applyStyleMarkers(text)
	}
	text = overrideBlockRe.ReplaceAllString(text, "")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = tabEscapeRe.ReplaceAllString(text, tabSpaces)
	text = otherEscapeRe.ReplaceAllString(text, "")
	text = angleBrackets.Replace(text)
	text = trimEdges(text)
	text = dropEmptyPairs(text)

	return markerTags.Replace(text)
}

// replaces the style toggles of every override block with markers. A block
// closing a style that has others opened after it closes those too and
// reopens the survivors; styles left open are closed at the end of the text.
func applyStyleMarkers(text string) string {
	var open []string

	text = overrideBlockRe.ReplaceAllStringFunc(text, func(block string) string {
		matches := styleCodeRe.FindAllStringSubmatch(block, -1)
		if len(matches) == 0 {
			return block
		}

		var opening, closing []string
		for _, m := range matches {
			if strings.TrimLeft(m[2], "0") != "" {
				opening = append(opening, m[1])
			} else {
				closing = append(closing, m[1])
			}
		}

		var sb strings.Builder
		lowest := len(open)
		for _, name := range closing {
			if i := slices.Index(open, name); i >= 0 && i < lowest {
				lowest = i
			}
		}
		kept := append([]string(nil), open[:lowest]...)
		for i := len(open) - 1; i >= lowest; i-- {
			sb.WriteRune(styleToggles[open[i]].off)
		}
		for _, name := range open[lowest:] {
			if !slices.Contains(closing, name) {
				sb.WriteRune(styleToggles[name].on)
				kept = append(kept, name)
			}
		}
		for _, name := range opening {
			if !slices.Contains(kept, name) {
				sb.WriteRune(styleToggles[name].on)
				kept = append(kept, name)
			}
		}
		open = kept
		return sb.String()
	})

	for i := len(open) - 1; i >= 0; i-- {
		text += string(styleToggles[open[i]].off)
	}
	return text
}

// removes marker pairs that enclose nothing, innermost first
func dropEmptyPairs(text string) string {
	for {
		next := emptyPairs.Replace(text)
		if next == text {
			return text
		}
		text = next
	}
}

// trims surrounding whitespace, looking through style markers at either
// edge. Text made only of markers and whitespace trims to "".
func trimEdges(text string) string {
	visible := func(r rune) bool {
		return !unicode.IsSpace(r) && !isMarker(r)
	}
	start := strings.IndexFunc(text, visible)
	if start < 0 {
		return ""
	}
	end := strings.LastIndexFunc(text, visible)
	_, size := utf8.DecodeRuneInString(text[end:])
	end += size

	return keepMarkers(text[:start]) + text[start:end] + keepMarkers(text[end:])
}

func keepMarkers(s string) string {
	return strings.Map(func(r rune) rune {
		if isMarker(r) {
			return r
		}
		return -1
	}, s)
}

func isMarker(r rune) bool {
	return r >= markBoldOpen && r <= markUnderlineEnd
}
