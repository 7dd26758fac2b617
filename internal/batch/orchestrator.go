package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidscribe/internal/config"
	"vidscribe/internal/logging"
	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/media/wav"
	"vidscribe/internal/recognition"
	"vidscribe/internal/services"
	"vidscribe/internal/transcript"
)

// Pipeline stage names used in events and log context.
const (
	StageDiscovery  = "discovery"
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageWrite      = "write"
)

// Extractor produces recognition-ready audio for a source file and returns
// its path.
type Extractor interface {
	Extract(ctx context.Context, source string) (string, error)
}

// prober is implemented by extractors that can report container metadata.
type prober interface {
	Probe(ctx context.Context, source string) (ffprobe.Result, error)
}

// Options controls a job.
type Options struct {
	Extensions   []string
	SkipExisting bool
	// PauseThreshold is the gap in seconds that starts a new transcript line.
	// Zero splits on any gap; a negative value selects the default.
	PauseThreshold float64
	KeepAudio      bool
}

// OptionsFromConfig reads job options from the batch section.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{Extensions: config.DefaultExtensions, PauseThreshold: transcript.DefaultPauseThreshold}
	}
	return Options{
		Extensions:     cfg.Batch.Extensions,
		SkipExisting:   cfg.Batch.SkipExisting,
		PauseThreshold: cfg.Batch.PauseThreshold,
		KeepAudio:      cfg.Batch.KeepAudio,
	}
}

// Orchestrator runs batch transcription jobs.
type Orchestrator struct {
	opts       Options
	extractor  Extractor
	recognizer recognition.Recognizer
	logger     *slog.Logger
	sampler    *logging.ProgressSampler
}

// New constructs an orchestrator.
func New(opts Options, extractor Extractor, recognizer recognition.Recognizer, logger *slog.Logger) *Orchestrator {
	if len(opts.Extensions) == 0 {
		opts.Extensions = config.DefaultExtensions
	}
	if opts.PauseThreshold < 0 {
		opts.PauseThreshold = transcript.DefaultPauseThreshold
	}
	return &Orchestrator{
		opts:       opts,
		extractor:  extractor,
		recognizer: recognizer,
		logger:     logging.NewComponentLogger(logger, "batch"),
		sampler:    logging.NewProgressSampler(10),
	}
}

// Options returns the job options in effect.
func (o *Orchestrator) Options() Options {
	return o.opts
}

type itemOutcome int

const (
	outcomeProcessed itemOutcome = iota
	outcomeSkipped
	outcomeFailed
	outcomeCancelled
)

// job carries the state of one Run call.
type job struct {
	summary Summary
	errLog  *ErrorLog
	sink    Sink
	logger  *slog.Logger
}

func (j *job) emit(event Event) {
	if event.Total == 0 {
		event.Total = j.summary.Total
	}
	if j.sink != nil {
		j.sink(event)
	}
}

// Run processes every media file under root. It always emits exactly one
// terminal event and returns the job summary; errors are reported through the
// summary, the error log and events.
func (o *Orchestrator) Run(ctx context.Context, root string, sink Sink) Summary {
	started := time.Now()
	j := &job{sink: sink}
	j.summary.JobID = uuid.NewString()
	ctx = services.WithJobID(ctx, j.summary.JobID)
	j.logger = logging.WithContext(ctx, o.logger)

	summary := o.run(ctx, root, j)
	summary.Elapsed = time.Since(started)
	return summary
}

func (o *Orchestrator) run(ctx context.Context, root string, j *job) Summary {
	absRoot, err := filepath.Abs(strings.TrimSpace(root))
	if err != nil || strings.TrimSpace(root) == "" {
		if err == nil {
			err = errors.New("root folder is empty")
		}
		return o.failToStart(j, services.Wrap(services.ErrConfiguration, StageDiscovery, "resolve root", root, err))
	}
	j.summary.Root = absRoot

	if info, err := os.Stat(absRoot); err != nil {
		return o.failToStart(j, services.Wrap(services.ErrDiscovery, StageDiscovery, "stat root", absRoot, err))
	} else if !info.IsDir() {
		return o.failToStart(j, services.Wrap(services.ErrDiscovery, StageDiscovery, "stat root", absRoot+" is not a directory", nil))
	}
	if o.extractor == nil || o.recognizer == nil {
		return o.failToStart(j, services.Wrap(services.ErrConfiguration, StageDiscovery, "setup", "extractor and recognizer are required", nil))
	}

	items, err := Discover(absRoot, o.opts.Extensions)
	if err != nil {
		return o.failToStart(j, err)
	}
	j.summary.Total = len(items)

	pending := 0
	for _, item := range items {
		if !o.shouldSkip(item) {
			pending++
		}
	}
	if pending > 0 {
		if err := o.recognizer.Check(ctx); err != nil {
			return o.failToStart(j, services.Wrap(services.ErrExternalTool, StageTranscribe, "check backend", o.recognizer.Name(), err))
		}
	}

	j.errLog = NewErrorLog(absRoot)
	if err := j.errLog.Reset(); err != nil {
		logging.WarnWithContext(j.logger, "previous error log could not be removed", "error_log_reset_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check write permissions on the root folder"),
			logging.String(logging.FieldImpact, "new failures will be appended to the old log"),
		)
	}

	j.logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_started"),
		logging.String("root", absRoot),
		logging.Int("total", len(items)),
		logging.Int("pending", pending),
		logging.String("backend", o.recognizer.Name()),
	)
	j.emit(Event{Kind: EventStarted, Path: absRoot, Message: fmt.Sprintf("found %d media files", len(items))})

	for i, item := range items {
		index := i + 1
		if ctx.Err() != nil {
			return o.cancel(j, len(items)-i)
		}
		switch o.processItem(ctx, j, index, item) {
		case outcomeProcessed:
			j.summary.Processed++
		case outcomeSkipped:
			j.summary.Skipped++
		case outcomeFailed:
			j.summary.Failed++
		case outcomeCancelled:
			return o.cancel(j, len(items)-i)
		}
	}

	j.summary.Status = StatusCompleted
	j.logger.Info("all videos processed",
		logging.String(logging.FieldEventType, "batch_completed"),
		logging.Int("processed", j.summary.Processed),
		logging.Int("skipped", j.summary.Skipped),
		logging.Int("failed", j.summary.Failed),
	)
	j.emit(Event{Kind: EventCompleted, Path: absRoot, Message: "all videos processed"})
	return j.summary
}

func (o *Orchestrator) shouldSkip(item WorkItem) bool {
	if !o.opts.SkipExisting {
		return false
	}
	_, err := os.Stat(item.TranscriptPath)
	return err == nil
}

func (o *Orchestrator) processItem(ctx context.Context, j *job, index int, item WorkItem) itemOutcome {
	ctx = services.WithItem(ctx, index, item.SourcePath)
	logger := logging.WithContext(ctx, o.logger)

	if o.shouldSkip(item) {
		logger.Info("transcript exists, skipping",
			logging.String(logging.FieldEventType, "item_skipped"),
			logging.String("transcript", item.TranscriptPath),
		)
		j.emit(Event{Kind: EventSkipped, Index: index, Path: item.SourcePath, Message: "transcript exists"})
		return outcomeSkipped
	}

	j.emit(Event{Kind: EventExtracting, Index: index, Path: item.SourcePath, Stage: StageExtract})
	extractCtx := services.WithStage(ctx, StageExtract)
	audioPath, err := o.extractor.Extract(extractCtx, item.SourcePath)
	if err != nil {
		if !errors.Is(err, services.ErrExtraction) {
			err = services.Wrap(services.ErrExtraction, StageExtract, "ffmpeg", item.SourcePath, err)
		}
		o.fail(extractCtx, j, index, item, StageExtract, err)
		return outcomeFailed
	}
	if !o.opts.KeepAudio {
		defer o.removeAudio(logger, audioPath)
	}
	if ctx.Err() != nil {
		return outcomeCancelled
	}

	duration := o.duration(ctx, item, audioPath)

	transcribeCtx := services.WithStage(ctx, StageTranscribe)
	j.emit(Event{Kind: EventTranscribing, Index: index, Path: item.SourcePath, Stage: StageTranscribe})
	o.sampler.Reset()
	result, err := o.recognizer.Transcribe(transcribeCtx, audioPath, func(percent int) {
		j.emit(Event{Kind: EventProgress, Index: index, Path: item.SourcePath, Stage: StageTranscribe, Percent: percent})
		if o.sampler.ShouldLog(percent, item.SourcePath) {
			logging.WithContext(transcribeCtx, o.logger).Info("transcription progress",
				logging.String(logging.FieldEventType, "transcribe_progress"),
				logging.Int(logging.FieldProgressPercent, percent),
			)
		}
	})
	if err != nil {
		if recognition.IsCancelled(err) {
			logger.Info("transcription cancelled",
				logging.String(logging.FieldEventType, "item_cancelled"),
			)
			return outcomeCancelled
		}
		if !errors.Is(err, services.ErrRecognition) {
			err = services.Wrap(services.ErrRecognition, StageTranscribe, o.recognizer.Name(), item.SourcePath, err)
		}
		o.fail(transcribeCtx, j, index, item, StageTranscribe, err)
		return outcomeFailed
	}

	doc := transcript.NewDocument(item.DisplayName, duration, result, o.opts.PauseThreshold)
	writeCtx := services.WithStage(ctx, StageWrite)
	if err := transcript.Write(item.TranscriptPath, doc); err != nil {
		o.fail(writeCtx, j, index, item, StageWrite, err)
		return outcomeFailed
	}

	message := fmt.Sprintf("%d lines", len(doc.Lines))
	if doc.Empty() {
		message = "no speech detected"
	}
	logging.WithContext(writeCtx, o.logger).Info("transcript written",
		logging.String(logging.FieldEventType, "item_completed"),
		logging.String("transcript", item.TranscriptPath),
		logging.Int("lines", len(doc.Lines)),
		logging.Bool("no_speech", doc.Empty()),
		logging.Float64("duration_seconds", duration),
	)
	j.emit(Event{Kind: EventItemCompleted, Index: index, Path: item.SourcePath, Stage: StageWrite, Percent: 100, Message: message})
	return outcomeProcessed
}

// duration prefers the extracted WAV header and falls back to the container.
func (o *Orchestrator) duration(ctx context.Context, item WorkItem, audioPath string) float64 {
	if header, err := wav.ReadHeader(audioPath); err == nil {
		if d := header.Duration(); d > 0 {
			return d
		}
	}
	p, ok := o.extractor.(prober)
	if !ok {
		return 0
	}
	probe, err := p.Probe(context.WithoutCancel(ctx), item.SourcePath)
	if err != nil {
		return 0
	}
	return probe.DurationSeconds()
}

func (o *Orchestrator) fail(ctx context.Context, j *job, index int, item WorkItem, stage string, err error) {
	record := RecordFor(item.SourcePath, err)
	j.summary.Errors = append(j.summary.Errors, record)

	logger := logging.WithContext(ctx, o.logger)
	logging.ErrorWithContext(logger, "item failed", "item_failed",
		logging.Error(err),
		logging.String("failure", record.Stage),
		logging.String(logging.FieldErrorHint, hintFor(stage)),
	)
	if appendErr := j.errLog.Append(record); appendErr != nil {
		logging.WarnWithContext(logger, "error log append failed", "error_log_append_failed",
			logging.Error(appendErr),
			logging.String(logging.FieldErrorHint, "check write permissions on the root folder"),
			logging.String(logging.FieldImpact, "failure is only visible in the application log"),
		)
	}
	j.emit(Event{Kind: EventItemFailed, Index: index, Path: item.SourcePath, Stage: stage, Message: record.Line()})
}

func (o *Orchestrator) removeAudio(logger *slog.Logger, audioPath string) {
	if err := os.Remove(audioPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debug("scratch audio removal failed", logging.Error(err), logging.String("audio", audioPath))
	}
}

func (o *Orchestrator) cancel(j *job, remaining int) Summary {
	j.summary.Remaining = remaining
	j.summary.Status = StatusCancelled
	j.logger.Info("batch cancelled",
		logging.String(logging.FieldEventType, "batch_cancelled"),
		logging.Int("processed", j.summary.Processed),
		logging.Int("remaining", remaining),
	)
	j.emit(Event{Kind: EventCancelled, Path: j.summary.Root, Message: fmt.Sprintf("%d items not processed", remaining)})
	return j.summary
}

func (o *Orchestrator) failToStart(j *job, err error) Summary {
	j.summary.Status = StatusFailedToStart
	j.summary.Err = err
	logging.ErrorWithContext(j.logger, "batch failed to start", "batch_failed_to_start",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the root folder and backend availability"),
	)
	j.emit(Event{Kind: EventFailedToStart, Path: j.summary.Root, Message: err.Error()})
	return j.summary
}

func hintFor(stage string) string {
	switch stage {
	case StageExtract:
		return "verify ffmpeg is installed and the file has an audio stream"
	case StageTranscribe:
		return "check the recognition backend logs"
	case StageWrite:
		return "check write permissions next to the source file"
	default:
		return ""
	}
}
