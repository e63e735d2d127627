package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	c.Convert.Dedup = strings.ToLower(strings.TrimSpace(c.Convert.Dedup))
	if c.Convert.Dedup == "" {
		c.Convert.Dedup = defaultDedup
	}
	c.Convert.Charset = strings.ToLower(strings.TrimSpace(c.Convert.Charset))
	if c.Convert.Charset == "" {
		c.Convert.Charset = defaultCharset
	}

	c.Tools.MKVMerge = strings.TrimSpace(c.Tools.MKVMerge)
	c.Tools.MKVExtract = strings.TrimSpace(c.Tools.MKVExtract)
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	c.Tools.Identifier = strings.ToLower(strings.TrimSpace(c.Tools.Identifier))
	if c.Tools.Identifier == "" {
		c.Tools.Identifier = defaultIdentifier
	}

	c.Transcode.VideoCodec = strings.TrimSpace(c.Transcode.VideoCodec)
	c.Transcode.Preset = strings.TrimSpace(c.Transcode.Preset)
	c.Transcode.AudioCodec = strings.TrimSpace(c.Transcode.AudioCodec)
	c.Transcode.Locale = strings.TrimSpace(c.Transcode.Locale)
	if c.Transcode.Locale == "" {
		c.Transcode.Locale = defaultTranscodeLocale
	}

	c.Mux.Language = strings.ToLower(strings.TrimSpace(c.Mux.Language))
	if c.Mux.Language == "" {
		c.Mux.Language = defaultMuxLanguage
	}
	c.Mux.TrackName = strings.TrimSpace(c.Mux.TrackName)

	if c.Batch.Concurrency == 0 {
		c.Batch.Concurrency = defaultBatchConcurrency
	}

	if c.Journal.Enabled {
		if strings.TrimSpace(c.Journal.Path) == "" {
			c.Journal.Path = defaultJournalPath
		}
		expanded, err := expandPath(c.Journal.Path)
		if err != nil {
			return fmt.Errorf("journal.path: %w", err)
		}
		c.Journal.Path = expanded
	}
	return nil
}
