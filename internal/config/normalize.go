package config

import (
	"fmt"
	"os"
	"strings"

	"vidscribe/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeRecognition(); err != nil {
		return err
	}
	c.normalizeVosk()
	c.normalizeWhisperX()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.RootDir) != "" {
		if c.Paths.RootDir, err = expandPath(strings.TrimSpace(c.Paths.RootDir)); err != nil {
			return fmt.Errorf("paths.root_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRecognition() error {
	c.Recognition.Backend = strings.ToLower(strings.TrimSpace(c.Recognition.Backend))
	if c.Recognition.Backend == "" {
		c.Recognition.Backend = defaultBackend
	}
	lang, err := language.Normalize(c.Recognition.Language)
	if err != nil {
		return fmt.Errorf("recognition.language: %w", err)
	}
	c.Recognition.Language = lang
	return nil
}

func (c *Config) normalizeVosk() {
	c.Vosk.URL = strings.TrimSpace(c.Vosk.URL)
	if value, ok := os.LookupEnv("VOSK_SERVER_URL"); ok && strings.TrimSpace(value) != "" {
		c.Vosk.URL = strings.TrimSpace(value)
	}
	if c.Vosk.URL == "" {
		c.Vosk.URL = defaultVoskURL
	}
	if c.Vosk.ChunkFrames <= 0 {
		c.Vosk.ChunkFrames = defaultVoskChunk
	}
	if c.Vosk.DialTimeout <= 0 {
		c.Vosk.DialTimeout = defaultVoskDial
	}
	c.Vosk.Model = strings.TrimSpace(c.Vosk.Model)
}

func (c *Config) normalizeWhisperX() {
	c.WhisperX.Model = strings.TrimSpace(c.WhisperX.Model)
	if c.WhisperX.Model == "" {
		c.WhisperX.Model = defaultWhisperXModel
	}
	c.WhisperX.VADMethod = strings.ToLower(strings.TrimSpace(c.WhisperX.VADMethod))
	if c.WhisperX.VADMethod == "" {
		c.WhisperX.VADMethod = defaultVADMethod
	}
	if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.WhisperX.HFToken = strings.TrimSpace(value)
	} else if value, ok := os.LookupEnv("HF_TOKEN"); ok && strings.TrimSpace(value) != "" {
		c.WhisperX.HFToken = strings.TrimSpace(value)
	}
	c.WhisperX.HFToken = strings.TrimSpace(c.WhisperX.HFToken)
}

func (c *Config) normalizeBatch() {
	if len(c.Batch.Extensions) == 0 {
		c.Batch.Extensions = append([]string(nil), DefaultExtensions...)
	} else {
		exts := make([]string, 0, len(c.Batch.Extensions))
		seen := make(map[string]struct{}, len(c.Batch.Extensions))
		for _, ext := range c.Batch.Extensions {
			normalized := strings.ToLower(strings.TrimSpace(ext))
			if normalized == "" {
				continue
			}
			if !strings.HasPrefix(normalized, ".") {
				normalized = "." + normalized
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			exts = append(exts, normalized)
		}
		if len(exts) == 0 {
			exts = append(exts, DefaultExtensions...)
		}
		c.Batch.Extensions = exts
	}
	if c.Batch.WatchDebounce <= 0 {
		c.Batch.WatchDebounce = defaultWatchDebounce
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
