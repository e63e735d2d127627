package config

import (
	"fmt"

	"github.com/mgpai22/ass2srt/internal/charset"
	"github.com/mgpai22/ass2srt/internal/subtitle"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConvert(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	if c.Batch.Concurrency < 0 {
		return fmt.Errorf("batch.concurrency must be positive, got %d", c.Batch.Concurrency)
	}
	return nil
}

func (c *Config) validateConvert() error {
	if _, err := subtitle.ParseDedupPolicy(c.Convert.Dedup); err != nil {
		return fmt.Errorf("convert.dedup: %w", err)
	}
	if c.Convert.Charset != charset.Auto {
		if _, err := charset.Lookup(c.Convert.Charset); err != nil {
			return fmt.Errorf("convert.charset: %w", err)
		}
	}
	return nil
}

func (c *Config) validateTools() error {
	switch c.Tools.Identifier {
	case "mkvmerge", "ffprobe":
		return nil
	default:
		return fmt.Errorf("tools.identifier must be mkvmerge or ffprobe, got %q", c.Tools.Identifier)
	}
}

func (c *Config) validateTranscode() error {
	if c.Transcode.CRF < 0 || c.Transcode.CRF > 63 {
		return fmt.Errorf("transcode.crf must be between 0 and 63, got %d", c.Transcode.CRF)
	}
	if c.Transcode.VideoCodec == "" {
		return fmt.Errorf("transcode.video_codec is required")
	}
	return nil
}
