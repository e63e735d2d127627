package mkv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
)

func hasPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestMuxerBuildArgs(t *testing.T) {
	m := NewMuxer("", nil, nil)

	t.Run("strip selected tracks", func(t *testing.T) {
		args := m.buildArgs(MuxRequest{
			Container: "/media/show.mkv",
			Subtitles: []SubtitleTrack{
				{Path: "/media/show.en.srt", Language: "en"},
				{Path: "/media/show.en.2.srt", Language: "en"},
			},
			StripASS:      true,
			StripTrackIDs: []int{2, 3},
		}, "/media/.mux-show.mkv.tmp")

		if args[0] != "-o" || args[1] != "/media/.mux-show.mkv.tmp" {
			t.Errorf("expected output flag first, got %v", args[:2])
		}
		if !hasPair(args, "-s", "!2,3") {
			t.Errorf("expected -s !2,3 in %v", args)
		}
		if args[4] != "/media/show.mkv" {
			t.Errorf("expected source container after strip flag, got %s", args[4])
		}
		if !hasPair(args, "--language", "0:eng") {
			t.Errorf("expected --language 0:eng in %v", args)
		}
		if !hasPair(args, "--track-name", "0:English") {
			t.Errorf("expected --track-name 0:English in %v", args)
		}
		if !hasPair(args, "--default-track", "0:yes") || !hasPair(args, "--default-track", "0:no") {
			t.Errorf("expected only the first subtitle to be default in %v", args)
		}
		if args[len(args)-1] != "/media/show.en.2.srt" {
			t.Errorf("expected subtitle path last, got %s", args[len(args)-1])
		}
	})

	t.Run("strip all subtitles", func(t *testing.T) {
		args := m.buildArgs(MuxRequest{
			Container: "show.mkv",
			Subtitles: []SubtitleTrack{{Path: "show.srt", Name: "Dialogue"}},
			StripASS:  true,
		}, "tmp.mkv")

		if args[2] != "--no-subtitles" {
			t.Errorf("expected --no-subtitles, got %v", args)
		}
		if !hasPair(args, "--language", "0:und") {
			t.Errorf("expected undetermined language in %v", args)
		}
		if !hasPair(args, "--track-name", "0:Dialogue") {
			t.Errorf("expected explicit track name in %v", args)
		}
	})

	t.Run("keep existing", func(t *testing.T) {
		args := m.buildArgs(MuxRequest{Container: "show.mkv", Subtitles: []SubtitleTrack{{Path: "show.srt", Language: "ja"}}}, "tmp.mkv")
		for _, a := range args {
			if a == "--no-subtitles" || a == "-s" {
				t.Errorf("unexpected strip flag in %v", args)
			}
		}
	})
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// fake mkvmerge that writes the -o target
func producingRunner(content string) Runner {
	return func(_ context.Context, _ string, args ...string) ([]byte, error) {
		return nil, os.WriteFile(args[1], []byte(content), 0o644)
	}
}

func TestMuxReplacesInPlace(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "show.mkv")
	srt := filepath.Join(dir, "show.en.srt")
	writeFixture(t, container, "original")
	writeFixture(t, srt, "1\n00:00:01.000 --> 00:00:02.000\nHello\n")

	m := NewMuxer("", producingRunner("muxed"), nil)
	result, err := m.Mux(context.Background(), MuxRequest{
		Container: container,
		Subtitles: []SubtitleTrack{{Path: srt, Language: "en"}},
	})
	if err != nil {
		t.Fatalf("Mux failed: %v", err)
	}

	data, _ := os.ReadFile(container)
	if string(data) != "muxed" {
		t.Errorf("expected container to be replaced, got %q", data)
	}
	if result.OutputPath != container {
		t.Errorf("expected output %s, got %s", container, result.OutputPath)
	}
	if len(result.RemovedSidecars) != 1 {
		t.Errorf("expected sidecar removal, got %v", result.RemovedSidecars)
	}
	if _, err := os.Stat(srt); !os.IsNotExist(err) {
		t.Error("expected sidecar to be removed")
	}
	if _, err := os.Stat(container + ".lock"); !os.IsNotExist(err) {
		t.Error("expected lock file to be cleaned up")
	}
}

func TestMuxSeparateOutputKeepsSidecars(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "show.mkv")
	output := filepath.Join(dir, "out", "show.mkv")
	srt := filepath.Join(dir, "show.en.srt")
	writeFixture(t, container, "original")
	writeFixture(t, srt, "subs")
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		t.Fatal(err)
	}

	m := NewMuxer("", producingRunner("muxed"), nil)
	if _, err := m.Mux(context.Background(), MuxRequest{
		Container:    container,
		Output:       output,
		Subtitles:    []SubtitleTrack{{Path: srt}},
		KeepSidecars: true,
	}); err != nil {
		t.Fatalf("Mux failed: %v", err)
	}

	if data, _ := os.ReadFile(container); string(data) != "original" {
		t.Errorf("expected source to be untouched, got %q", data)
	}
	if data, _ := os.ReadFile(output); string(data) != "muxed" {
		t.Errorf("expected output to be written, got %q", data)
	}
	if _, err := os.Stat(srt); err != nil {
		t.Error("expected sidecar to be kept")
	}
}

func TestMuxFailureLeavesSource(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "show.mkv")
	srt := filepath.Join(dir, "show.srt")
	writeFixture(t, container, "original")
	writeFixture(t, srt, "subs")

	boom := errors.New("exit status 2")
	m := NewMuxer("", func(_ context.Context, _ string, args ...string) ([]byte, error) {
		_ = os.WriteFile(args[1], []byte("partial"), 0o644)
		return nil, boom
	}, nil)

	if _, err := m.Mux(context.Background(), MuxRequest{Container: container, Subtitles: []SubtitleTrack{{Path: srt}}}); !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
	if data, _ := os.ReadFile(container); string(data) != "original" {
		t.Errorf("expected source to survive, got %q", data)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestMuxValidation(t *testing.T) {
	var nilMuxer *Muxer
	if _, err := nilMuxer.Mux(context.Background(), MuxRequest{}); err == nil {
		t.Error("expected error for nil muxer")
	}

	m := NewMuxer("", producingRunner(""), nil)
	if _, err := m.Mux(context.Background(), MuxRequest{Subtitles: []SubtitleTrack{{Path: "a.srt"}}}); err == nil {
		t.Error("expected error for empty container")
	}
	if _, err := m.Mux(context.Background(), MuxRequest{Container: "show.mkv"}); err == nil {
		t.Error("expected error for missing subtitles")
	}

	dir := t.TempDir()
	container := filepath.Join(dir, "show.mkv")
	writeFixture(t, container, "x")
	if _, err := m.Mux(context.Background(), MuxRequest{Container: container, Subtitles: []SubtitleTrack{{Path: filepath.Join(dir, "nope.srt")}}}); err == nil {
		t.Error("expected error for missing subtitle file")
	}
}

func TestMuxHonorsExistingLock(t *testing.T) {
	dir := t.TempDir()
	container := filepath.Join(dir, "show.mkv")
	srt := filepath.Join(dir, "show.srt")
	writeFixture(t, container, "original")
	writeFixture(t, srt, "subs")

	held := flock.New(container + ".lock")
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("failed to take lock: %v", err)
	}
	defer func() { _ = held.Unlock() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMuxer("", producingRunner("muxed"), nil)
	if _, err := m.Mux(ctx, MuxRequest{Container: container, Subtitles: []SubtitleTrack{{Path: srt}}}); err == nil {
		t.Fatal("expected mux to fail while the container is locked")
	}
	if data, _ := os.ReadFile(container); string(data) != "original" {
		t.Errorf("expected source to be untouched, got %q", data)
	}
}
