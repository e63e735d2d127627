package config

const (
	defaultConfigPath       = "~/.config/ass2srt/config.toml"
	defaultJournalPath      = "~/.local/share/ass2srt/journal.db"
	defaultDedup            = "exact"
	defaultCharset          = "auto"
	defaultIdentifier       = "mkvmerge"
	defaultVideoCodec       = "libx264"
	defaultCRF              = 20
	defaultPreset           = "medium"
	defaultAudioCodec       = "copy"
	defaultTranscodeLocale  = "C"
	defaultMuxLanguage      = "und"
	defaultBatchConcurrency = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Convert: Convert{
			Dedup:        defaultDedup,
			StyleMarkers: true,
			Charset:      defaultCharset,
		},
		Tools: Tools{
			MKVMerge:   "mkvmerge",
			MKVExtract: "mkvextract",
			Identifier: defaultIdentifier,
		},
		Transcode: Transcode{
			VideoCodec: defaultVideoCodec,
			CRF:        defaultCRF,
			Preset:     defaultPreset,
			AudioCodec: defaultAudioCodec,
			Locale:     defaultTranscodeLocale,
		},
		Mux: Mux{
			Language: defaultMuxLanguage,
			StripASS: true,
		},
		Batch: Batch{
			Concurrency: defaultBatchConcurrency,
		},
		Journal: Journal{
			Path: defaultJournalPath,
		},
	}
}
