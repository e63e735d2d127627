package mkv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mgpai22/ass2srt/internal/logging"
)

const (
	IdentifierMKVMerge = "mkvmerge"
	IdentifierFFprobe  = "ffprobe"
)

type Identifier interface {
	Identify(ctx context.Context, path string) ([]Track, error)
}

// builds the identifier named by kind ("mkvmerge" or "ffprobe")
func NewIdentifier(kind, binary string, run Runner, logger *logging.Logger) (Identifier, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", IdentifierMKVMerge:
		return &MKVMergeIdentifier{Binary: orDefault(binary, "mkvmerge"), run: orExec(run), logger: logging.OrNop(logger).Component("identify")}, nil
	case IdentifierFFprobe:
		return &FFprobeIdentifier{Binary: orDefault(binary, "ffprobe"), run: orExec(run), logger: logging.OrNop(logger).Component("identify")}, nil
	default:
		return nil, fmt.Errorf("unknown track identifier %q", kind)
	}
}

// lists tracks with `mkvmerge -J`
type MKVMergeIdentifier struct {
	Binary string
	run    Runner
	logger *logging.Logger
}

type mkvmergeIdentification struct {
	Container struct {
		Recognized bool   `json:"recognized"`
		Supported  bool   `json:"supported"`
		Type       string `json:"type"`
	} `json:"container"`
	Tracks []struct {
		ID         int    `json:"id"`
		Type       string `json:"type"`
		Codec      string `json:"codec"`
		Properties struct {
			CodecID      string `json:"codec_id"`
			Language     string `json:"language"`
			LanguageIETF string `json:"language_ietf"`
			TrackName    string `json:"track_name"`
			DefaultTrack bool   `json:"default_track"`
			ForcedTrack  bool   `json:"forced_track"`
		} `json:"properties"`
	} `json:"tracks"`
}

func (m *MKVMergeIdentifier) Identify(ctx context.Context, path string) ([]Track, error) {
	out, err := m.run(ctx, m.Binary, "-J", path)
	if err != nil {
		return nil, fmt.Errorf("failed to identify %s: %w", path, err)
	}

	var ident mkvmergeIdentification
	if err := json.Unmarshal(out, &ident); err != nil {
		return nil, fmt.Errorf("failed to parse mkvmerge output: %w", err)
	}
	if !ident.Container.Recognized {
		return nil, fmt.Errorf("unrecognized container: %s", path)
	}

	tracks := make([]Track, 0, len(ident.Tracks))
	for _, t := range ident.Tracks {
		codec := t.Properties.CodecID
		if codec == "" {
			codec = t.Codec
		}
		tracks = append(tracks, Track{
			ID:       t.ID,
			Type:     t.Type,
			Codec:    codec,
			Language: t.Properties.Language,
			Name:     t.Properties.TrackName,
			Default:  t.Properties.DefaultTrack,
			Forced:   t.Properties.ForcedTrack,
		})
	}

	m.logger.Debugw("identified tracks", "path", path, "container", ident.Container.Type, "tracks", len(tracks))
	return tracks, nil
}

// lists tracks with `ffprobe -show_streams`. Stream indices match mkvmerge
// track IDs for Matroska input.
type FFprobeIdentifier struct {
	Binary string
	run    Runner
	logger *logging.Logger
}

type ffprobeStreams struct {
	Streams []struct {
		Index       int               `json:"index"`
		CodecName   string            `json:"codec_name"`
		CodecType   string            `json:"codec_type"`
		Tags        map[string]string `json:"tags"`
		Disposition struct {
			Default int `json:"default"`
			Forced  int `json:"forced"`
		} `json:"disposition"`
	} `json:"streams"`
}

func (f *FFprobeIdentifier) Identify(ctx context.Context, path string) ([]Track, error) {
	out, err := f.run(ctx, f.Binary, "-v", "error", "-hide_banner", "-show_streams", "-of", "json", "--", path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", path, err)
	}

	var probe ffprobeStreams
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	tracks := make([]Track, 0, len(probe.Streams))
	for _, s := range probe.Streams {
		tracks = append(tracks, Track{
			ID:       s.Index,
			Type:     streamType(s.CodecType),
			Codec:    s.CodecName,
			Language: s.Tags["language"],
			Name:     s.Tags["title"],
			Default:  s.Disposition.Default == 1,
			Forced:   s.Disposition.Forced == 1,
		})
	}

	f.logger.Debugw("probed streams", "path", path, "tracks", len(tracks))
	return tracks, nil
}

// maps ffprobe codec_type onto mkvmerge track types
func streamType(codecType string) string {
	switch strings.ToLower(codecType) {
	case "subtitle":
		return TypeSubtitle
	case "video":
		return TypeVideo
	case "audio":
		return TypeAudio
	}
	return strings.ToLower(codecType)
}
