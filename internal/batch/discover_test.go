package batch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidscribe/internal/config"
	"vidscribe/internal/services"
)

func TestDiscoverFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.mkv"))
	touch(t, filepath.Join(root, "a.mp4"))
	touch(t, filepath.Join(root, "clip.MP4"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "a.wav"))
	touch(t, filepath.Join(root, "nested", "deep", "c.webm"))
	if err := os.Mkdir(filepath.Join(root, "dir.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	items, err := Discover(root, config.DefaultExtensions)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	var names []string
	for _, item := range items {
		rel, _ := filepath.Rel(root, item.SourcePath)
		names = append(names, rel)
	}
	want := []string{"a.mp4", "b.mkv", "clip.MP4", filepath.Join("nested", "deep", "c.webm")}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestNewWorkItemPaths(t *testing.T) {
	item := NewWorkItem("/videos/talks/Intro.Part1.MOV")
	if item.BaseName != "/videos/talks/Intro.Part1" {
		t.Fatalf("BaseName = %q", item.BaseName)
	}
	if item.AudioPath != "/videos/talks/Intro.Part1.wav" || item.TranscriptPath != "/videos/talks/Intro.Part1.txt" {
		t.Fatalf("unexpected paths %+v", item)
	}
	if item.DisplayName != "Intro.Part1" {
		t.Fatalf("DisplayName = %q", item.DisplayName)
	}
}

func TestWalkStopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"1.mp4", "2.mp4", "3.mp4"} {
		touch(t, filepath.Join(root, name))
	}
	count := 0
	for _, err := range Walk(root, []string{"mp4"}) {
		if err != nil {
			t.Fatal(err)
		}
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("count = %d", count)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), config.DefaultExtensions)
	if !errors.Is(err, services.ErrDiscovery) {
		t.Fatalf("expected ErrDiscovery, got %v", err)
	}
}

func TestErrorLogAppendAndReset(t *testing.T) {
	root := t.TempDir()
	log := NewErrorLog(root)
	if err := log.Reset(); err != nil {
		t.Fatalf("Reset on missing file: %v", err)
	}
	if exists(log.Path()) {
		t.Fatal("reset should not create the log")
	}
	record := RecordFor("/v/a.mp4", services.Wrap(services.ErrExtraction, "extract", "ffmpeg", "exit status 1", nil))
	if err := log.Append(record); err != nil {
		t.Fatal(err)
	}
	if err := log.Append(ErrorRecord{Path: "/v/b.mp4", Stage: services.TagWrite, Cause: "disk full"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatal(err)
	}
	want := "[Audio Extract Error] /v/a.mp4: extract: ffmpeg: exit status 1\n[Write Error] /v/b.mp4: disk full\n"
	if string(data) != want {
		t.Fatalf("log = %q, want %q", data, want)
	}
	if err := log.Reset(); err != nil || exists(log.Path()) {
		t.Fatalf("reset did not remove log: %v", err)
	}
}
