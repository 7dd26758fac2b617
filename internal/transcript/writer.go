package transcript

import (
	"fmt"
	"os"
	"path/filepath"

	"vidscribe/internal/services"
)

// Write renders doc to path, replacing any existing file.
func Write(path string, doc Document) error {
	if err := atomicWrite(path, []byte(Render(doc))); err != nil {
		return services.Wrap(services.ErrWrite, "write", "transcript", path, err)
	}
	return nil
}

// atomicWrite writes data to path atomically using a temp file + rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".vidscribe-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("syncing: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing: %w", err)
	}
	tmpFile = nil

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming: %w", err)
	}
	return nil
}
