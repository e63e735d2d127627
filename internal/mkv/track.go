package mkv

import (
	"path/filepath"
	"strings"
)

const (
	TypeVideo    = "video"
	TypeAudio    = "audio"
	TypeSubtitle = "subtitles"
)

// one stream of a media container, as reported by mkvmerge or ffprobe
type Track struct {
	ID       int
	Type     string
	Codec    string
	Language string
	Name     string
	Default  bool
	Forced   bool
}

func (t Track) IsSubtitle() bool {
	return t.Type == TypeSubtitle
}

// reports whether the track carries SubRip text
func (t Track) IsSRT() bool {
	if !t.IsSubtitle() {
		return false
	}
	switch strings.ToLower(t.Codec) {
	case "s_text/utf8", "s_text/ascii", "subrip", "srt":
		return true
	}
	return false
}

// reports whether the track carries Advanced SubStation Alpha or SSA text
func (t Track) IsASS() bool {
	if !t.IsSubtitle() {
		return false
	}
	switch strings.ToLower(t.Codec) {
	case "s_text/ass", "s_text/ssa", "ass", "ssa", "substationalpha":
		return true
	}
	return false
}

// file extension for the extracted track
func (t Track) Extension() string {
	switch strings.ToLower(t.Codec) {
	case "s_text/ssa", "ssa":
		return ".ssa"
	}
	if t.IsSRT() {
		return ".srt"
	}
	return ".ass"
}

func HasSRT(tracks []Track) bool {
	for _, t := range tracks {
		if t.IsSRT() {
			return true
		}
	}
	return false
}

func ASSTracks(tracks []Track) []Track {
	var out []Track
	for _, t := range tracks {
		if t.IsASS() {
			out = append(out, t)
		}
	}
	return out
}

// checks the file extension against containers mkvmerge reads
func IsContainer(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mkv", ".mka", ".mks", ".webm":
		return true
	}
	return false
}
