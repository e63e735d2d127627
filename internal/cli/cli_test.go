package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/ass2srt/internal/config"
	"github.com/mgpai22/ass2srt/internal/mkv"
	"github.com/mgpai22/ass2srt/internal/subtitle"
	"github.com/mgpai22/ass2srt/internal/workflow"
)

func withConfig(t *testing.T, c config.Config) {
	t.Helper()
	prev := cfg
	cfg = &c
	t.Cleanup(func() { cfg = prev })
}

func TestSubtitleOptionsFlagsOverrideConfig(t *testing.T) {
	c := config.Default()
	c.Convert.Dedup = "substring"
	c.Convert.CommaDecimal = true
	withConfig(t, c)

	cmd := &cobra.Command{Use: "convert"}
	addConvertFlags(cmd)

	opts, err := subtitleOptions(cmd)
	if err != nil {
		t.Fatalf("subtitleOptions failed: %v", err)
	}
	if opts.Dedup != subtitle.DedupSubstring || !opts.CommaDecimal || !opts.StyleMarkers {
		t.Errorf("expected config values, got %+v", opts)
	}

	for flag, value := range map[string]string{
		"dedup":    "none",
		"no-style": "true",
		"comma":    "false",
		"charset":  "shift_jis",
	} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("set %s: %v", flag, err)
		}
	}

	opts, err = subtitleOptions(cmd)
	if err != nil {
		t.Fatalf("subtitleOptions failed: %v", err)
	}
	if opts.Dedup != subtitle.DedupNone || opts.StyleMarkers || opts.CommaDecimal || opts.Charset != "shift_jis" {
		t.Errorf("expected flag overrides, got %+v", opts)
	}
}

func TestSubtitleOptionsRejectsBadDedup(t *testing.T) {
	withConfig(t, config.Default())
	cmd := &cobra.Command{Use: "convert"}
	addConvertFlags(cmd)
	_ = cmd.Flags().Set("dedup", "fuzzy")

	if _, err := subtitleOptions(cmd); err == nil {
		t.Error("expected error for unknown dedup policy")
	}
}

func newProcessFlags() *cobra.Command {
	cmd := &cobra.Command{Use: "process"}
	addConvertFlags(cmd)
	addBatchFlags(cmd)
	addTranscodeFlags(cmd)
	cmd.Flags().Int("track", workflow.AllTracks, "")
	cmd.Flags().Bool("no-mux", false, "")
	cmd.Flags().Bool("keep-ass", false, "")
	cmd.Flags().Bool("force", false, "")
	cmd.Flags().Bool("transcode", false, "")
	cmd.Flags().String("track-name", "", "")
	cmd.Flags().String("language", "", "")
	cmd.Flags().String("output", "", "")
	return cmd
}

func TestWorkflowOptions(t *testing.T) {
	c := config.Default()
	c.Mux.Language = "ja"
	c.Mux.KeepSidecar = true
	c.Transcode.CRF = 18
	c.Batch.Concurrency = 6
	withConfig(t, c)

	cmd := newProcessFlags()
	opts, err := workflowOptions(cmd)
	if err != nil {
		t.Fatalf("workflowOptions failed: %v", err)
	}
	if opts.Language != "ja" || !opts.NoMux || !opts.StripASS || opts.Track != workflow.AllTracks {
		t.Errorf("expected config defaults, got %+v", opts)
	}
	if opts.TranscodeOptions.CRF != 18 || opts.TranscodeOptions.VideoCodec != "libx264" {
		t.Errorf("unexpected transcode options %+v", opts.TranscodeOptions)
	}
	if concurrency(cmd) != 6 {
		t.Errorf("expected config concurrency, got %d", concurrency(cmd))
	}

	for flag, value := range map[string]string{
		"language":    "en",
		"no-mux":      "false",
		"keep-ass":    "true",
		"track":       "3",
		"crf":         "25",
		"concurrency": "2",
	} {
		if err := cmd.Flags().Set(flag, value); err != nil {
			t.Fatalf("set %s: %v", flag, err)
		}
	}

	opts, err = workflowOptions(cmd)
	if err != nil {
		t.Fatalf("workflowOptions failed: %v", err)
	}
	if opts.Language != "en" || opts.NoMux || opts.StripASS || opts.Track != 3 || opts.TranscodeOptions.CRF != 25 {
		t.Errorf("expected flag overrides, got %+v", opts)
	}
	if concurrency(cmd) != 2 {
		t.Errorf("expected flag concurrency, got %d", concurrency(cmd))
	}
}

func TestWorkflowOptionsTranscodeNeedsMux(t *testing.T) {
	withConfig(t, config.Default())
	cmd := newProcessFlags()
	_ = cmd.Flags().Set("transcode", "true")
	_ = cmd.Flags().Set("no-mux", "true")

	if _, err := workflowOptions(cmd); err == nil {
		t.Error("expected error for --transcode with --no-mux")
	}
}

func TestLanguageOverrideIgnoresUndetermined(t *testing.T) {
	withConfig(t, config.Default())
	cmd := newProcessFlags()
	if got := languageOverride(cmd); got != "" {
		t.Errorf("expected no override for und, got %q", got)
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	files := []string{"b.ass", "a.ssa", "nested/c.ASS", "notes.txt", "show.mkv"}
	for _, f := range files {
		p := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := collectInputs([]string{dir, filepath.Join(dir, "b.ass")}, false)
	if err != nil {
		t.Fatalf("collectInputs failed: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.ssa"),
		filepath.Join(dir, "b.ass"),
		filepath.Join(dir, "nested", "c.ASS"),
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("collectInputs() = %v, want %v", got, want)
	}

	got, _ = collectInputs([]string{dir}, true)
	if len(got) != 4 || got[3] != filepath.Join(dir, "show.mkv") {
		t.Errorf("expected container to be included, got %v", got)
	}

	if _, err := collectInputs([]string{filepath.Join(dir, "missing.ass")}, false); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []mkv.Track{
		{ID: 0, Type: mkv.TypeVideo, Codec: "V_VP9"},
		{ID: 2, Type: mkv.TypeSubtitle, Codec: "S_TEXT/ASS"},
		{ID: 3, Type: mkv.TypeSubtitle, Codec: "S_TEXT/ASS"},
	}

	if tr, err := pickTrack(tracks, -1); err != nil || tr.ID != 2 {
		t.Errorf("expected first ASS track, got %+v / %v", tr, err)
	}
	if tr, err := pickTrack(tracks, 3); err != nil || tr.ID != 3 {
		t.Errorf("expected track 3, got %+v / %v", tr, err)
	}
	if _, err := pickTrack(tracks, 0); err == nil {
		t.Error("expected error for video track")
	}
	if _, err := pickTrack(tracks, 7); err == nil {
		t.Error("expected error for missing track")
	}
	if _, err := pickTrack(tracks[:1], -1); err == nil {
		t.Error("expected error without ASS tracks")
	}
}

func TestTablesRender(t *testing.T) {
	out := tracksTable([]mkv.Track{
		{ID: 2, Type: mkv.TypeSubtitle, Codec: "S_TEXT/ASS", Language: "eng", Default: true},
	})
	for _, want := range []string{"S_TEXT/ASS", "eng", "default,convertible"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in tracks table:\n%s", want, out)
		}
	}

	reports := []workflow.Report{
		{Path: "a.ass", Status: workflow.StatusConverted, Outputs: []string{"a.srt"}, Blocks: 3, Duration: time.Second},
		{Path: "b.ass", Status: workflow.StatusFailed, Reason: "missing [Events] section"},
	}
	summary := summaryTable(reports)
	for _, want := range []string{"a.srt", "missing [Events] section", "converted", "failed"} {
		if !strings.Contains(summary, want) {
			t.Errorf("expected %q in summary:\n%s", want, summary)
		}
	}
	if line := summaryLine(reports); line != "1 converted, 0 skipped, 0 unchanged, 1 failed" {
		t.Errorf("unexpected summary line %q", line)
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.srt")
	bad := filepath.Join(dir, "bad.srt")
	_ = os.WriteFile(good, []byte("1\n00:00:01.000 --> 00:00:02.000\nHi\n\n2\n00:00:03.000 --> 00:00:04.000\nBye\n\n"), 0o644)
	_ = os.WriteFile(bad, []byte("1\n00:00:01.000 --> 00:00:02.000\nHi\n\n3\n00:00:03.000 --> 00:00:04.000\nBye\n\n"), 0o644)

	if n, err := checkFile(good); err != nil || n != 2 {
		t.Errorf("expected 2 valid blocks, got %d / %v", n, err)
	}
	if _, err := checkFile(bad); err == nil {
		t.Error("expected index gap to fail")
	}
}
