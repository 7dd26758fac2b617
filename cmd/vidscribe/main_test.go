package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidscribe/internal/batch"
	"vidscribe/internal/services"
)

func TestRunTranscribesFolder(t *testing.T) {
	env := setupCLITestEnv(t, newFakeVosk(t))
	video := filepath.Join(env.root, "lecture.mp4")
	if err := os.WriteFile(video, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"run", "--keep-audio=false", "--summary"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	requireContains(t, out, "Found 1 media files")
	requireContains(t, out, "[1/1] lecture.mp4: extracting audio")
	requireContains(t, out, "[1/1] lecture.mp4: transcribing")
	requireContains(t, out, "All videos processed.")
	requireContains(t, out, "Summary written to")

	data, err := os.ReadFile(filepath.Join(env.root, "lecture.txt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if want := "# lecture | Duration: 1.0 sec\n[0.5] hello world\n"; string(data) != want {
		t.Fatalf("transcript = %q, want %q", data, want)
	}
	if _, err := os.Stat(filepath.Join(env.root, "lecture.wav")); !os.IsNotExist(err) {
		t.Fatalf("scratch audio should be removed, stat err=%v", err)
	}
	summary, err := os.ReadFile(filepath.Join(env.root, "summary.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(summary), "--- lecture.txt ---\n# lecture") {
		t.Fatalf("unexpected summary %q", summary)
	}

	// A second run skips the finished video.
	out, _, err = runCLI(t, []string{"run", env.root}, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "skipped (transcript exists)")
}

func TestRunReportsFailedItems(t *testing.T) {
	env := setupCLITestEnv(t, newFakeVosk(t))
	if err := os.WriteFile(filepath.Join(env.root, "a.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	// ffmpeg fails for every input.
	if err := os.WriteFile(filepath.Join(env.binDir, "ffmpeg"), []byte("#!/bin/sh\necho 'Invalid data found' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil {
		t.Fatal("expected error when items fail")
	}
	requireContains(t, err.Error(), "1 of 1 videos failed")
	requireContains(t, out, "failed: [Audio Extract Error]")

	log, readErr := os.ReadFile(filepath.Join(env.root, batch.ErrorLogFileName))
	if readErr != nil {
		t.Fatal(readErr)
	}
	requireContains(t, string(log), "[Audio Extract Error] "+filepath.Join(env.root, "a.mp4")+": ")
	requireContains(t, string(log), "Invalid data found")
}

func TestRunZeroPauseSplitsEveryGap(t *testing.T) {
	env := setupCLITestEnv(t, newFakeVosk(t))
	if err := os.WriteFile(filepath.Join(env.root, "lecture.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out, _, err := runCLI(t, []string{"run", "--pause", "0"}, env.configPath); err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(env.root, "lecture.txt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if want := "# lecture | Duration: 1.0 sec\n[0.5] hello\n[1.0] world\n"; string(data) != want {
		t.Fatalf("transcript = %q, want %q", data, want)
	}
}

func TestRunBackendUnavailable(t *testing.T) {
	env := setupCLITestEnv(t, "ws://127.0.0.1:1")
	if err := os.WriteFile(filepath.Join(env.root, "a.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	requireContains(t, out, "Failed to start")
}

func TestWatchChecksBackendBeforeWatching(t *testing.T) {
	env := setupCLITestEnv(t, "ws://127.0.0.1:1")
	_, _, err := runCLI(t, []string{"watch"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "Backend vosk") {
		t.Fatalf("expected backend check failure, got %v", err)
	}
}

func TestNewJobKeepsRecognizer(t *testing.T) {
	env := setupCLITestEnv(t, newFakeVosk(t))
	configPath := env.configPath
	cctx := newCommandContext(&configPath, nil)
	cfg, err := cctx.ensureConfig()
	if err != nil {
		t.Fatalf("ensureConfig: %v", err)
	}
	job, err := newJob(cctx, cfg, env.root)
	if err != nil {
		t.Fatalf("newJob: %v", err)
	}
	if job.recognizer == nil || job.recognizer.Name() != "vosk" {
		t.Fatalf("job recognizer = %v, want vosk", job.recognizer)
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t, newFakeVosk(t))
	_, _, err := runCLI(t, []string{"run", "--backend", "nope"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	_, _, err = runCLI(t, []string{"run", "--model", "vosk-model-en-us-0.22"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) || !strings.Contains(err.Error(), "whisperx") {
		t.Fatalf("expected --model to be rejected for vosk, got %v", err)
	}
	_, _, err = runCLI(t, []string{"run", "--language", "not a language!"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for language, got %v", err)
	}
}

func TestRunMissingRoot(t *testing.T) {
	env := setupCLITestEnv(t, newFakeVosk(t))
	_, _, err := runCLI(t, []string{"run", filepath.Join(env.baseDir, "missing")}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "Root folder") {
		t.Fatalf("expected preflight failure for root, got %v", err)
	}
}

func TestSummaryCommand(t *testing.T) {
	env := setupCLITestEnv(t, newFakeVosk(t))
	for name, content := range map[string]string{
		"a.mkv": "video",
		"a.txt": "# a\n[0.0] hello\n",
	} {
		if err := os.WriteFile(filepath.Join(env.root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	out, _, err := runCLI(t, []string{"summary"}, env.configPath)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	requireContains(t, out, "(1 transcripts)")
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t, newFakeVosk(t))
	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "== Configuration ==")
	requireContains(t, out, "Auto-detect")
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "vosk")
	requireContains(t, out, "whisperx")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t, newFakeVosk(t))

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config exists")
	}
}

func TestSummaryErrorStatuses(t *testing.T) {
	if err := summaryError(batch.Summary{Status: batch.StatusCompleted}); err != nil {
		t.Fatalf("completed: %v", err)
	}
	if err := summaryError(batch.Summary{Status: batch.StatusCancelled}); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled: %v", err)
	}
	boom := errors.New("boom")
	if err := summaryError(batch.Summary{Status: batch.StatusFailedToStart, Err: boom}); !errors.Is(err, boom) {
		t.Fatalf("failed to start: %v", err)
	}
}
