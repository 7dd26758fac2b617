package preflight

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"vidscribe/internal/config"
	"vidscribe/internal/deps"
	"vidscribe/internal/recognition"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
// Transcripts and scratch audio are written next to the sources, so the root
// folder needs write access too.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBackend verifies that the recognition backend is usable. Vosk dials the
// server; WhisperX resolves the uvx launcher.
func CheckBackend(ctx context.Context, rec recognition.Recognizer) Result {
	if rec == nil {
		return Result{Name: "Recognition backend", Detail: "not configured"}
	}
	name := "Backend " + rec.Name()
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	started := time.Now()
	if err := rec.Check(checkCtx); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("ready (%s)", time.Since(started).Round(time.Millisecond))}
}

// CheckSystemDeps evaluates all system-level dependencies for the given config.
// Both RunAll and the CLI status command use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for audio extraction",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Selects the audio stream and reports duration",
			Optional:    true,
		},
	}
	if cfg.Recognition.Backend == config.BackendWhisperX {
		requirements = append(requirements, deps.Requirement{
			Name:        "uvx",
			Command:     cfg.WhisperXBinary(),
			Description: "Required for WhisperX-driven transcription",
		})
	}
	return deps.CheckBinaries(requirements)
}
