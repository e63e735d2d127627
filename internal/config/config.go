package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/ass2srt/internal/subtitle"
)

//go:embed sample_config.toml
var sampleConfig string

// Convert contains options for the ASS to SRT engine.
type Convert struct {
	Dedup        string `toml:"dedup"`
	StyleMarkers bool   `toml:"style_markers"`
	CommaDecimal bool   `toml:"comma_decimal"`
	Charset      string `toml:"charset"`
}

// Tools names the external binaries used for container work.
type Tools struct {
	MKVMerge   string `toml:"mkvmerge"`
	MKVExtract string `toml:"mkvextract"`
	FFmpeg     string `toml:"ffmpeg"`
	FFprobe    string `toml:"ffprobe"`
	Identifier string `toml:"identifier"`
}

// Transcode contains ffmpeg settings for video re-encoding.
type Transcode struct {
	VideoCodec string `toml:"video_codec"`
	CRF        int    `toml:"crf"`
	Preset     string `toml:"preset"`
	AudioCodec string `toml:"audio_codec"`
	Locale     string `toml:"locale"`
}

// Mux contains settings for embedding converted subtitles.
type Mux struct {
	Language    string `toml:"language"`
	TrackName   string `toml:"track_name"`
	StripASS    bool   `toml:"strip_ass"`
	KeepSidecar bool   `toml:"keep_sidecar"`
}

// Batch contains settings for multi-file runs.
type Batch struct {
	Concurrency   int  `toml:"concurrency"`
	SkipUnchanged bool `toml:"skip_unchanged"`
}

// Journal contains settings for the conversion history database.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config is the top-level configuration file.
type Config struct {
	Convert   Convert   `toml:"convert"`
	Tools     Tools     `toml:"tools"`
	Transcode Transcode `toml:"transcode"`
	Mux       Mux       `toml:"mux"`
	Batch     Batch     `toml:"batch"`
	Journal   Journal   `toml:"journal"`
}

// DefaultConfigPath returns ~/.config/ass2srt/config.toml.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the configuration at path (or the default location) on top of
// Default(). A missing file is not an error. Returns the config, the resolved
// path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultConfigPath
	}

	resolved, err := expandPath(path)
	if err != nil {
		return "", false, fmt.Errorf("resolve config path: %w", err)
	}

	info, err := os.Stat(resolved)
	switch {
	case err == nil:
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", resolved)
		}
		return resolved, true, nil
	case errors.Is(err, fs.ErrNotExist):
		if explicit {
			return "", false, fmt.Errorf("config file not found: %s", resolved)
		}
		return resolved, false, nil
	default:
		return "", false, fmt.Errorf("stat config: %w", err)
	}
}

// SubtitleOptions maps the [convert] section onto conversion options.
func (c *Config) SubtitleOptions() (subtitle.Options, error) {
	policy, err := subtitle.ParseDedupPolicy(c.Convert.Dedup)
	if err != nil {
		return subtitle.Options{}, err
	}
	opts := subtitle.DefaultOptions()
	opts.Dedup = policy
	opts.StyleMarkers = c.Convert.StyleMarkers
	opts.CommaDecimal = c.Convert.CommaDecimal
	opts.Charset = c.Convert.Charset
	return opts, nil
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("determine home directory: %w", err)
		}
		pathValue = filepath.Join(home, strings.TrimPrefix(pathValue, "~"))
	}
	return filepath.Clean(pathValue), nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the commented sample configuration to path. Existing
// files are never overwritten.
func CreateSample(path string) error {
	resolved, err := expandPath(path)
	if err != nil {
		return err
	}
	if resolved == "" {
		return errors.New("config path is required")
	}
	if _, err := os.Stat(resolved); err == nil {
		return fmt.Errorf("config file already exists: %s", resolved)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(resolved, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
