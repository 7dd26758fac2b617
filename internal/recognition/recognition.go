package recognition

import (
	"context"
	"errors"
	"strings"
)

// ErrCancelled is returned by Transcribe when the context was cancelled
// before recognition finished. No partial result accompanies it.
var ErrCancelled = errors.New("recognition cancelled")

// Word is one recognized token with its timing in seconds.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Segment is an engine-native phrase with its start time in seconds.
type Segment struct {
	Start float64
	End   float64
	Text  string
}

// Result is the unified output of a recognition session.
type Result struct {
	Text     string
	Words    []Word
	Segments []Segment
	Backend  string
	Model    string
	Language string
}

// Empty reports whether the session recognized no speech at all.
func (r Result) Empty() bool {
	return len(r.Words) == 0 && len(r.Segments) == 0 && strings.TrimSpace(r.Text) == ""
}

// ProgressFunc receives integer percentages in [0, 100]. Values never
// decrease within one session.
type ProgressFunc func(percent int)

// Recognizer is implemented by each speech recognition backend.
type Recognizer interface {
	// Name is the backend identifier used in configuration.
	Name() string
	// Check verifies the backend is reachable or installed.
	Check(ctx context.Context) error
	// Transcribe recognizes speech in a 16 kHz mono PCM WAV file.
	Transcribe(ctx context.Context, audioPath string, progress ProgressFunc) (Result, error)
}

// IsCancelled reports whether err signals a cancelled session.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
