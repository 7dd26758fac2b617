package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"vidscribe/internal/logging"
	"vidscribe/internal/media/audio"
	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/services"
)

const (
	SampleRate = 16000
	Channels   = 1
)

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober inspects a media file.
type Prober func(ctx context.Context, path string) (ffprobe.Result, error)

// Extractor runs ffmpeg to produce recognition-ready audio.
type Extractor struct {
	ffmpegBinary  string
	ffprobeBinary string
	languageHint  string
	logger        *slog.Logger
	commandRunner CommandRunner
	prober        Prober
}

// New creates an Extractor. languageHint steers audio stream selection and may
// be empty.
func New(ffmpegBinary, ffprobeBinary, languageHint string, logger *slog.Logger) *Extractor {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Extractor{
		ffmpegBinary:  ffmpegBinary,
		ffprobeBinary: ffprobeBinary,
		languageHint:  languageHint,
		logger:        logging.NewComponentLogger(logger, "extract"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner CommandRunner) {
	e.commandRunner = runner
}

// WithProber sets a custom stream prober (for testing).
func (e *Extractor) WithProber(prober Prober) {
	e.prober = prober
}

// AudioPath returns the scratch audio path for a source: the source path with
// its extension replaced by ".wav".
func AudioPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".wav"
}

// BuildArgs returns the ffmpeg arguments that decode source into dest. A
// negative audioOrdinal leaves stream selection to ffmpeg.
func BuildArgs(source, dest string, audioOrdinal int) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-nostdin",
		"-i", source,
	}
	if audioOrdinal >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:a:%d", audioOrdinal))
	}
	return append(args,
		"-vn",
		"-sn",
		"-dn",
		"-ac", fmt.Sprint(Channels),
		"-ar", fmt.Sprint(SampleRate),
		"-c:a", "pcm_s16le",
		dest,
	)
}

// Extract writes <base>.wav next to source, overwriting any previous output,
// and returns its path. The ffmpeg process is not bound to ctx cancellation:
// an extraction that has started runs to completion.
func (e *Extractor) Extract(ctx context.Context, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", services.Wrap(services.ErrExtraction, "extract", "validate", "empty source path", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "stat source", "", err)
	}

	runCtx := context.WithoutCancel(ctx)
	logger := logging.WithContext(ctx, e.logger)
	dest := AudioPath(source)

	ordinal := -1
	if probe, err := e.Probe(runCtx, source); err != nil {
		logger.Debug("stream probe failed; using ffmpeg default audio stream", logging.Error(err))
	} else {
		selection := audio.Select(probe.Streams, e.languageHint)
		if !selection.Found() {
			return "", services.Wrap(services.ErrExtraction, "extract", "select audio", "source has no audio stream", nil)
		}
		if selection.Ambiguous() {
			ordinal = selection.Ordinal
			logger.Info("audio stream selected",
				logging.String("audio_stream", selection.PrimaryLabel()),
				logging.Int("audio_candidates", selection.Candidates),
			)
		}
	}

	args := BuildArgs(source, dest, ordinal)
	logger.Debug("running ffmpeg", logging.String("command", e.ffmpegBinary+" "+strings.Join(args, " ")))
	if output, err := e.run(runCtx, e.ffmpegBinary, args...); err != nil {
		message := strings.TrimSpace(string(output))
		if message == "" {
			message = "ffmpeg failed"
		}
		return "", services.Wrap(services.ErrExtraction, "extract", "ffmpeg", message, err)
	}
	if _, err := os.Stat(dest); err != nil {
		return "", services.Wrap(services.ErrExtraction, "extract", "verify output", "ffmpeg produced no audio file", err)
	}
	return dest, nil
}

// Probe inspects source with ffprobe.
func (e *Extractor) Probe(ctx context.Context, source string) (ffprobe.Result, error) {
	if e.prober != nil {
		return e.prober(ctx, source)
	}
	return ffprobe.Inspect(ctx, e.ffprobeBinary, source)
}

func (e *Extractor) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return output, fmt.Errorf("start %s: %w", name, err)
	}
	return output, err
}
