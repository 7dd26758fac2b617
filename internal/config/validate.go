package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRecognition(); err != nil {
		return err
	}
	if err := c.validateVosk(); err != nil {
		return err
	}
	if err := c.validateWhisperX(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRecognition() error {
	switch c.Recognition.Backend {
	case BackendVosk, BackendWhisperX:
		return nil
	default:
		return fmt.Errorf("recognition.backend must be %q or %q, got %q", BackendVosk, BackendWhisperX, c.Recognition.Backend)
	}
}

func (c *Config) validateVosk() error {
	if c.Recognition.Backend != BackendVosk {
		return nil
	}
	parsed, err := url.Parse(c.Vosk.URL)
	if err != nil {
		return fmt.Errorf("vosk.url: %w", err)
	}
	if parsed.Scheme != "ws" && parsed.Scheme != "wss" {
		return fmt.Errorf("vosk.url must use ws:// or wss://, got %q", c.Vosk.URL)
	}
	if c.Vosk.ChunkFrames <= 0 {
		return errors.New("vosk.chunk_frames must be positive")
	}
	if c.Vosk.DialTimeout <= 0 {
		return errors.New("vosk.dial_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateWhisperX() error {
	if c.Recognition.Backend != BackendWhisperX {
		return nil
	}
	switch c.WhisperX.VADMethod {
	case "silero":
	case "pyannote":
		if strings.TrimSpace(c.WhisperX.HFToken) == "" {
			return errors.New("whisperx.hf_token must be set when whisperx.vad_method is pyannote (or set HF_TOKEN)")
		}
	default:
		return fmt.Errorf("whisperx.vad_method must be silero or pyannote, got %q", c.WhisperX.VADMethod)
	}
	return nil
}

func (c *Config) validateBatch() error {
	if c.Batch.PauseThreshold < 0 {
		return errors.New("batch.pause_threshold must be >= 0")
	}
	if len(c.Batch.Extensions) == 0 {
		return errors.New("batch.extensions must include at least one extension")
	}
	if c.Batch.WatchDebounce <= 0 {
		return errors.New("batch.watch_debounce must be positive (seconds)")
	}
	return nil
}
