package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vidscribe/internal/batch"
	"vidscribe/internal/config"
	"vidscribe/internal/language"
	"vidscribe/internal/media/extract"
	"vidscribe/internal/preflight"
	"vidscribe/internal/recognition"
	"vidscribe/internal/services"
	"vidscribe/internal/transcript"
)

// jobFlags are the per-invocation overrides shared by run and watch.
type jobFlags struct {
	backend      string
	model        string
	language     string
	skipExisting bool
	pause        float64
	summary      bool
	keepAudio    bool
}

func (f *jobFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.backend, "backend", "", "Recognition backend (vosk or whisperx)")
	flags.StringVar(&f.model, "model", "", "WhisperX model (vosk-server loads its model at startup)")
	flags.StringVar(&f.language, "language", "", "Language hint, empty or \"auto\" to auto-detect")
	flags.BoolVar(&f.skipExisting, "skip-existing", true, "Skip videos that already have a transcript")
	flags.Float64Var(&f.pause, "pause", 0, "Pause in seconds that starts a new transcript line")
	flags.BoolVar(&f.summary, "summary", false, "Write summary.txt after the batch")
	flags.BoolVar(&f.keepAudio, "keep-audio", true, "Keep the extracted .wav next to each video")
}

// apply copies explicitly set flags onto cfg and revalidates it.
func (f *jobFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Recognition.Backend = strings.ToLower(strings.TrimSpace(f.backend))
	}
	if flags.Changed("model") {
		if cfg.Recognition.Backend != config.BackendWhisperX {
			return fmt.Errorf("%w: --model only applies to the whisperx backend; vosk-server selects its model at startup", services.ErrConfiguration)
		}
		cfg.WhisperX.Model = strings.TrimSpace(f.model)
	}
	if flags.Changed("language") {
		code, err := language.Normalize(f.language)
		if err != nil {
			return fmt.Errorf("%w: --language: %w", services.ErrConfiguration, err)
		}
		cfg.Recognition.Language = code
	}
	if flags.Changed("skip-existing") {
		cfg.Batch.SkipExisting = f.skipExisting
	}
	if flags.Changed("pause") {
		cfg.Batch.PauseThreshold = f.pause
	}
	if flags.Changed("summary") {
		cfg.Batch.WriteSummary = f.summary
	}
	if flags.Changed("keep-audio") {
		cfg.Batch.KeepAudio = f.keepAudio
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", services.ErrConfiguration, err)
	}
	return nil
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags jobFlags
	cmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Transcribe every video under a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := flags.apply(cmd, cfg); err != nil {
				return err
			}
			root, err := resolveRoot(cfg, args)
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			job, err := newJob(ctx, cfg, root)
			if err != nil {
				return err
			}
			summary, err := job.run(runCtx, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return summaryError(summary)
		},
	}
	flags.register(cmd)
	return cmd
}

// resolveRoot picks the root folder from args or paths.root_dir.
func resolveRoot(cfg *config.Config, args []string) (string, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	} else if cfg != nil {
		raw = cfg.Paths.RootDir
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: no root folder given and paths.root_dir is not set", services.ErrConfiguration)
	}
	expanded, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	return filepath.Abs(expanded)
}

// transcriptionJob wires one configured batch run.
type transcriptionJob struct {
	cfg        *config.Config
	root       string
	recognizer recognition.Recognizer
	runner     *batch.Runner
}

func newJob(ctx *commandContext, cfg *config.Config, root string) (*transcriptionJob, error) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	if failed := preflight.Failed(preflight.RunAll(context.Background(), cfg, root)); len(failed) > 0 {
		return nil, fmt.Errorf("%w: preflight failed: %s", services.ErrExternalTool, preflight.Summarize(failed))
	}
	recognizer, err := ctx.recognizer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", services.ErrConfiguration, err)
	}
	extractor := extract.New(cfg.FFmpegBinary(), cfg.FFprobeBinary(), cfg.Recognition.Language, logger)
	orch := batch.New(batch.OptionsFromConfig(cfg), extractor, recognizer, logger)
	return &transcriptionJob{
		cfg:        cfg,
		root:       root,
		recognizer: recognizer,
		runner:     batch.NewRunner(orch, cfg.LockPath(), logger),
	}, nil
}

// run executes one batch, renders progress to out, and writes the summary
// file when enabled.
func (j *transcriptionJob) run(ctx context.Context, out io.Writer) (batch.Summary, error) {
	printer := newProgressPrinter(out)
	summary, err := j.runner.RunSync(ctx, j.root, printer.handle)
	if err != nil {
		return summary, err
	}
	printer.finish()
	fmt.Fprintln(out, renderSummary(summary))

	if j.cfg.Batch.WriteSummary && summary.Status != batch.StatusFailedToStart {
		result, err := transcript.WriteSummary(summary.Root, j.cfg.Batch.Extensions)
		if err != nil {
			return summary, fmt.Errorf("write summary: %w", err)
		}
		fmt.Fprintf(out, "Summary written to %s (%d transcripts)\n", result.Path, result.Transcripts)
	}
	return summary, nil
}

// summaryError converts a finished job into the command's exit status.
func summaryError(summary batch.Summary) error {
	switch summary.Status {
	case batch.StatusFailedToStart:
		return summary.Err
	case batch.StatusCancelled:
		return context.Canceled
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d videos failed; see %s", summary.Failed, summary.Total, filepath.Join(summary.Root, batch.ErrorLogFileName))
	}
	return nil
}
