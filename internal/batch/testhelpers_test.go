package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"vidscribe/internal/media/extract"
	"vidscribe/internal/media/wav"
	"vidscribe/internal/recognition"
	"vidscribe/internal/services"
	"vidscribe/internal/testsupport"
)

type fakeExtractor struct {
	mu     sync.Mutex
	fail   map[string]error
	frames int
	calls  []string
}

func (f *fakeExtractor) Extract(_ context.Context, source string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, source)
	f.mu.Unlock()
	if err, ok := f.fail[filepath.Base(source)]; ok {
		return "", services.Wrap(services.ErrExtraction, "extract", "ffmpeg", source, err)
	}
	frames := f.frames
	if frames == 0 {
		frames = 16000
	}
	dest := extract.AudioPath(source)
	if err := wav.WriteFile(dest, extract.SampleRate, 1, frames); err != nil {
		return "", err
	}
	return dest, nil
}

type fakeRecognizer struct {
	mu       sync.Mutex
	checkErr error
	// onTranscribe lets a test customize behavior per audio file.
	onTranscribe func(ctx context.Context, audioPath string, progress recognition.ProgressFunc) (recognition.Result, error)
	calls        []string
}

func (f *fakeRecognizer) Name() string { return "fake" }

func (f *fakeRecognizer) Check(context.Context) error { return f.checkErr }

func (f *fakeRecognizer) Transcribe(ctx context.Context, audioPath string, progress recognition.ProgressFunc) (recognition.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, audioPath)
	f.mu.Unlock()
	if f.onTranscribe != nil {
		return f.onTranscribe(ctx, audioPath, progress)
	}
	progress(50)
	progress(100)
	return recognition.Result{
		Text: "hi there bye",
		Words: []recognition.Word{
			{Text: "hi", Start: 0, End: 0.2},
			{Text: "there", Start: 0.3, End: 0.6},
			{Text: "bye", Start: 2, End: 2.3},
		},
	}, nil
}

func (f *fakeRecognizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) sink(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *eventRecorder) kinds(kind EventKind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *eventRecorder) terminal(t *testing.T) Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []Event
	for _, e := range r.events {
		if e.Kind.Terminal() {
			found = append(found, e)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly one terminal event, got %d: %+v", len(found), found)
	}
	if last := r.events[len(r.events)-1]; !last.Kind.Terminal() {
		t.Fatalf("terminal event is not last: %+v", last)
	}
	return found[0]
}

func touch(t *testing.T, path string) {
	t.Helper()
	testsupport.WriteFile(t, path, 5)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var errBoom = errors.New("boom")
