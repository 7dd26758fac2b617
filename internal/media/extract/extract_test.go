package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/media/wav"
	"vidscribe/internal/services"
)

func writeSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func singleAudio(context.Context, string) (ffprobe.Result, error) {
	return ffprobe.Result{Streams: []ffprobe.Stream{{Index: 0, CodecType: "video"}, {Index: 1, CodecType: "audio"}}}, nil
}

func TestAudioPath(t *testing.T) {
	cases := map[string]string{
		"/v/talk.mp4":          "/v/talk.wav",
		"/v/My Clip.final.MKV": "/v/My Clip.final.wav",
		"/v/noext":             "/v/noext.wav",
	}
	for in, want := range cases {
		if got := AudioPath(in); got != want {
			t.Errorf("AudioPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildArgs(t *testing.T) {
	got := BuildArgs("/v/a.mp4", "/v/a.wav", -1)
	want := []string{"-y", "-hide_banner", "-loglevel", "error", "-nostdin", "-i", "/v/a.mp4", "-vn", "-sn", "-dn", "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le", "/v/a.wav"}
	if !slices.Equal(got, want) {
		t.Fatalf("BuildArgs = %v\nwant %v", got, want)
	}

	mapped := BuildArgs("/v/a.mp4", "/v/a.wav", 2)
	if idx := slices.Index(mapped, "-map"); idx < 0 || mapped[idx+1] != "0:a:2" {
		t.Fatalf("expected -map 0:a:2 in %v", mapped)
	}
}

func TestExtractWritesWAVBesideSource(t *testing.T) {
	source := writeSource(t, "lecture.mov")
	ex := New("ffmpeg", "ffprobe", "", nil)
	ex.WithProber(singleAudio)

	var gotArgs []string
	ex.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, wav.WriteFile(args[len(args)-1], 16000, 1, 1600)
	})

	dest, err := ex.Extract(context.Background(), source)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if dest != strings.TrimSuffix(source, ".mov")+".wav" {
		t.Fatalf("unexpected dest %q", dest)
	}
	if slices.Contains(gotArgs, "-map") {
		t.Fatalf("single audio stream should not be mapped explicitly: %v", gotArgs)
	}
}

func TestExtractMapsSelectedStream(t *testing.T) {
	source := writeSource(t, "film.mkv")
	ex := New("ffmpeg", "ffprobe", "en", nil)
	ex.WithProber(func(context.Context, string) (ffprobe.Result, error) {
		return ffprobe.Result{Streams: []ffprobe.Stream{
			{Index: 1, CodecType: "audio", Tags: map[string]string{"language": "fre"}, Disposition: map[string]int{"default": 1}},
			{Index: 2, CodecType: "audio", Tags: map[string]string{"language": "eng"}},
		}}, nil
	})
	var gotArgs []string
	ex.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, wav.WriteFile(args[len(args)-1], 16000, 1, 10)
	})

	if _, err := ex.Extract(context.Background(), source); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if idx := slices.Index(gotArgs, "-map"); idx < 0 || gotArgs[idx+1] != "0:a:1" {
		t.Fatalf("expected english stream mapped, args %v", gotArgs)
	}
}

func TestExtractFailureCarriesStderr(t *testing.T) {
	source := writeSource(t, "broken.avi")
	ex := New("ffmpeg", "ffprobe", "", nil)
	ex.WithProber(singleAudio)
	ex.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Invalid data found when processing input\n"), errors.New("exit status 1")
	})

	_, err := ex.Extract(context.Background(), source)
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if !strings.Contains(services.Cause(err), "Invalid data found") {
		t.Fatalf("cause should include ffmpeg stderr: %q", services.Cause(err))
	}
	if services.FailureTag(err) != services.TagExtraction {
		t.Fatalf("unexpected tag %q", services.FailureTag(err))
	}
}

func TestExtractRejectsSourceWithoutAudio(t *testing.T) {
	source := writeSource(t, "silent.mp4")
	ex := New("ffmpeg", "ffprobe", "", nil)
	ex.WithProber(func(context.Context, string) (ffprobe.Result, error) {
		return ffprobe.Result{Streams: []ffprobe.Stream{{Index: 0, CodecType: "video"}}}, nil
	})
	ex.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		t.Fatal("ffmpeg should not run without an audio stream")
		return nil, nil
	})
	if _, err := ex.Extract(context.Background(), source); !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestExtractIgnoresCancellation(t *testing.T) {
	source := writeSource(t, "a.webm")
	ex := New("ffmpeg", "ffprobe", "", nil)
	ex.WithProber(singleAudio)
	ex.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if ctx.Err() != nil {
			t.Fatal("command context should not be cancelled")
		}
		return nil, wav.WriteFile(args[len(args)-1], 16000, 1, 10)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ex.Extract(ctx, source); err != nil {
		t.Fatalf("Extract: %v", err)
	}
}

func TestExtractProbeFailureFallsBack(t *testing.T) {
	source := writeSource(t, "a.mpg")
	ex := New("ffmpeg", "ffprobe", "", nil)
	ex.WithProber(func(context.Context, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("ffprobe missing")
	})
	ex.WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, wav.WriteFile(args[len(args)-1], 16000, 1, 10)
	})
	if _, err := ex.Extract(context.Background(), source); err != nil {
		t.Fatalf("Extract: %v", err)
	}
}
