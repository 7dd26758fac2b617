package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `{
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "channels": 2,
     "tags": {"language": "eng"}, "disposition": {"default": 1}},
    {"index": 2, "codec_type": "audio", "codec_name": "ac3", "channels": 6,
     "tags": {"language": "ger", "title": "Director Commentary"}}
  ],
  "format": {"filename": "a.mkv", "nb_streams": 3, "duration": "123.45", "size": "1000"}
}`

func TestParseAndHelpers(t *testing.T) {
	result, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.VideoStreamCount() != 1 {
		t.Fatalf("expected 1 video stream, got %d", result.VideoStreamCount())
	}
	audio := result.AudioStreams()
	if len(audio) != 2 || audio[0].Index != 1 || audio[1].Tags["title"] != "Director Commentary" {
		t.Fatalf("unexpected audio streams: %+v", audio)
	}
	if audio[0].Disposition["default"] != 1 {
		t.Fatalf("expected default disposition on first audio stream")
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 1000 {
		t.Fatalf("unexpected size: %d", result.SizeBytes())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{Format: Format{Duration: "bad", Size: "-1"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.SizeBytes() != 0 {
		t.Fatalf("expected size 0, got %d", result.SizeBytes())
	}
}

func TestInspectRunsBinary(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "out.json")
	if err := os.WriteFile(jsonPath, []byte(sampleJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(dir, "ffprobe")
	body := "#!/bin/sh\ncat '" + jsonPath + "'\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := Inspect(context.Background(), script, "/media/a.mkv")
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(result.AudioStreams()) != 2 {
		t.Fatalf("expected 2 audio streams, got %d", len(result.AudioStreams()))
	}
}

func TestInspectReportsStderr(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "ffprobe")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'moov atom not found' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := Inspect(context.Background(), script, "/media/broken.mp4")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "moov atom not found") {
		t.Fatalf("error %q should include stderr", got)
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "", " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
