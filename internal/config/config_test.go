package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidscribe/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("VOSK_SERVER_URL", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "vidscribe", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Recognition.Backend != config.BackendVosk {
		t.Fatalf("expected vosk backend by default, got %q", cfg.Recognition.Backend)
	}
	if cfg.Vosk.ChunkFrames != 4000 {
		t.Fatalf("expected 4000 frame chunks, got %d", cfg.Vosk.ChunkFrames)
	}
	if cfg.Batch.PauseThreshold != 0.8 {
		t.Fatalf("expected default pause threshold 0.8, got %v", cfg.Batch.PauseThreshold)
	}
	if !cfg.Batch.SkipExisting {
		t.Fatal("expected skip_existing enabled by default")
	}
	if len(cfg.Batch.Extensions) != 7 {
		t.Fatalf("expected 7 default extensions, got %v", cfg.Batch.Extensions)
	}
	if cfg.Recognition.Language != "" {
		t.Fatalf("expected auto-detect language, got %q", cfg.Recognition.Language)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vidscribe.toml")
	t.Setenv("VOSK_SERVER_URL", "")

	type payload struct {
		Recognition struct {
			Backend  string `toml:"backend"`
			Language string `toml:"language"`
		} `toml:"recognition"`
		WhisperX struct {
			Model string `toml:"model"`
		} `toml:"whisperx"`
		Batch struct {
			Extensions     []string `toml:"extensions"`
			PauseThreshold float64  `toml:"pause_threshold"`
			SkipExisting   bool     `toml:"skip_existing"`
		} `toml:"batch"`
	}
	custom := payload{}
	custom.Recognition.Backend = "WhisperX"
	custom.Recognition.Language = "ru-RU"
	custom.WhisperX.Model = "small"
	custom.Batch.Extensions = []string{"MP4", ".mkv", "mp4", " "}
	custom.Batch.PauseThreshold = 1.5
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Recognition.Backend != config.BackendWhisperX {
		t.Fatalf("expected backend normalized to whisperx, got %q", cfg.Recognition.Backend)
	}
	if cfg.Recognition.Language != "ru" {
		t.Fatalf("expected language reduced to base code, got %q", cfg.Recognition.Language)
	}
	if cfg.WhisperX.Model != "small" {
		t.Fatalf("expected whisperx model override, got %q", cfg.WhisperX.Model)
	}
	if got := strings.Join(cfg.Batch.Extensions, ","); got != ".mp4,.mkv" {
		t.Fatalf("unexpected normalized extensions: %q", got)
	}
	if cfg.Batch.PauseThreshold != 1.5 {
		t.Fatalf("expected pause threshold 1.5, got %v", cfg.Batch.PauseThreshold)
	}
	if cfg.Batch.SkipExisting {
		t.Fatal("expected skip_existing false from file")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "vidscribe.toml")
	if err := os.WriteFile(configPath, []byte("[batch]\nskip_exisitng = true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "vidscribe.toml")
	contents := "[vosk]\nurl = \"ws://file:2700\"\n[whisperx]\nhf_token = \"file-hf\"\n"
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("VOSK_SERVER_URL", "ws://env:2700")
	t.Setenv("HF_TOKEN", "env-hf")
	t.Setenv("HUGGING_FACE_HUB_TOKEN", "")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Vosk.URL != "ws://env:2700" {
		t.Errorf("expected Vosk URL from env, got %q", cfg.Vosk.URL)
	}
	if cfg.WhisperX.HFToken != "env-hf" {
		t.Errorf("expected HuggingFace token from env, got %q", cfg.WhisperX.HFToken)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Recognition.Backend != config.BackendVosk {
		t.Fatalf("expected sample backend vosk, got %q", cfg.Recognition.Backend)
	}
	if cfg.Vosk.ChunkFrames != 4000 {
		t.Fatalf("expected sample chunk size 4000, got %d", cfg.Vosk.ChunkFrames)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Recognition.Backend = "kaldi"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg = config.Default()
	cfg.Vosk.URL = "http://127.0.0.1:2700"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-websocket vosk url")
	}

	cfg = config.Default()
	cfg.Batch.PauseThreshold = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative pause threshold")
	}

	cfg = config.Default()
	cfg.Batch.PauseThreshold = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero pause threshold should be valid: %v", err)
	}

	cfg = config.Default()
	cfg.Recognition.Backend = config.BackendWhisperX
	cfg.WhisperX.VADMethod = "pyannote"
	cfg.WhisperX.HFToken = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when pyannote VAD has no token")
	}

	cfg = config.Default()
	cfg.Recognition.Backend = config.BackendWhisperX
	cfg.Vosk.URL = "not-a-url"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("vosk settings should be ignored for whisperx backend: %v", err)
	}
}
