package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"vidscribe/internal/services"
)

// ErrorLogFileName is the per-root failure log.
const ErrorLogFileName = "error_log.txt"

// ErrorRecord is one failed item.
type ErrorRecord struct {
	Path  string
	Stage string
	Cause string
}

// Line renders the record as written to the log, without trailing newline.
func (r ErrorRecord) Line() string {
	return fmt.Sprintf("[%s] %s: %s", r.Stage, r.Path, r.Cause)
}

// RecordFor builds an ErrorRecord for a failed stage error.
func RecordFor(path string, err error) ErrorRecord {
	return ErrorRecord{Path: path, Stage: services.FailureTag(err), Cause: services.Cause(err)}
}

// ErrorLog appends failure records to <root>/error_log.txt. The file is only
// created by the first Append.
type ErrorLog struct {
	path string
	mu   sync.Mutex
}

// NewErrorLog returns the error log for root.
func NewErrorLog(root string) *ErrorLog {
	return &ErrorLog{path: filepath.Join(root, ErrorLogFileName)}
}

// Path returns the log file location.
func (l *ErrorLog) Path() string {
	return l.path
}

// Reset removes the log left by a previous job.
func (l *ErrorLog) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove error log: %w", err)
	}
	return nil
}

// Append writes one record line.
func (l *ErrorLog) Append(record ErrorRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	if _, err := f.WriteString(record.Line() + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append error log: %w", err)
	}
	return f.Close()
}
