package ffmpeg

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAssetForPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "ffmpeg-6.1-linux-64.zip", false},
		{"linux", "arm64", "ffmpeg-6.1-linux-arm-64.zip", false},
		{"darwin", "amd64", "ffmpeg-6.1-macos-64.zip", false},
		{"windows", "amd64", "ffmpeg-6.1-win-64.zip", false},
		{"plan9", "386", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := assetForPlatform(tt.goos, tt.goarch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("assetForPlatform() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("assetForPlatform() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnvVar(t *testing.T) {
	tests := map[string]string{
		"mkvmerge":    "ASS2SRT_MKVMERGE_PATH",
		"ffprobe":     "ASS2SRT_FFPROBE_PATH",
		"ffmpeg.exe":  "ASS2SRT_FFMPEG_PATH",
		"mkv-extract": "ASS2SRT_MKV_EXTRACT_PATH",
	}
	for name, want := range tests {
		if got := envVar(name); got != want {
			t.Errorf("envVar(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestLookupConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "mkvmerge")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Lookup("mkvmerge", bin)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != bin {
		t.Errorf("expected %s, got %s", bin, got)
	}

	_, err = Lookup("mkvmerge", filepath.Join(dir, "missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupEnvOverride(t *testing.T) {
	t.Setenv("ASS2SRT_MKVEXTRACT_PATH", "/opt/mkvtoolnix/mkvextract")

	got, err := Lookup("mkvextract", "")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != "/opt/mkvtoolnix/mkvextract" {
		t.Errorf("expected env override, got %s", got)
	}
}

func TestLookupMissingFromPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	if _, err := Lookup("ass2srt-no-such-tool", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
