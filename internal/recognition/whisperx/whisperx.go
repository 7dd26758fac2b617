package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"vidscribe/internal/config"
	"vidscribe/internal/language"
	"vidscribe/internal/logging"
	"vidscribe/internal/recognition"
	"vidscribe/internal/services"
)

// Name is the backend identifier.
const Name = config.BackendWhisperX

// CommandRunner executes an external command and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Recognizer transcribes whole files with WhisperX.
type Recognizer struct {
	cfg           Config
	binary        string
	logger        *slog.Logger
	commandRunner CommandRunner
}

// New creates a WhisperX recognizer. binary defaults to uvx.
func New(cfg Config, binary string, logger *slog.Logger) *Recognizer {
	if strings.TrimSpace(binary) == "" {
		binary = UVXCommand
	}
	return &Recognizer{
		cfg:    cfg,
		binary: binary,
		logger: logging.NewComponentLogger(logger, "whisperx"),
	}
}

// NewFromConfig builds a recognizer from application configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Recognizer {
	return New(Config{
		Model:       cfg.WhisperX.Model,
		CUDAEnabled: cfg.WhisperX.CUDAEnabled,
		VADMethod:   cfg.WhisperX.VADMethod,
		HFToken:     cfg.WhisperX.HFToken,
		Language:    cfg.Recognition.Language,
	}, cfg.WhisperXBinary(), logger)
}

// WithCommandRunner sets a custom command runner (for testing).
func (r *Recognizer) WithCommandRunner(runner CommandRunner) {
	r.commandRunner = runner
}

// Name implements recognition.Recognizer.
func (r *Recognizer) Name() string {
	return Name
}

// Model returns the configured model name for logging.
func (r *Recognizer) Model() string {
	if r.cfg.Model != "" {
		return r.cfg.Model
	}
	return DefaultModel
}

// Check verifies the launcher binary is on PATH.
func (r *Recognizer) Check(context.Context) error {
	if r.commandRunner != nil {
		return nil
	}
	if _, err := exec.LookPath(r.binary); err != nil {
		return services.Wrap(services.ErrExternalTool, "whisperx", "lookup", r.binary+" not found on PATH", err)
	}
	return nil
}

// Transcribe implements recognition.Recognizer.
func (r *Recognizer) Transcribe(ctx context.Context, audioPath string, progress recognition.ProgressFunc) (recognition.Result, error) {
	if ctx.Err() != nil {
		return recognition.Result{}, recognition.ErrCancelled
	}
	if strings.TrimSpace(audioPath) == "" {
		return recognition.Result{}, services.Wrap(services.ErrRecognition, "whisperx", "validate", "audio path required", nil)
	}

	outputDir, err := os.MkdirTemp("", "vidscribe-whisperx-")
	if err != nil {
		return recognition.Result{}, services.Wrap(services.ErrRecognition, "whisperx", "create output dir", "", err)
	}
	defer os.RemoveAll(outputDir)

	tracker := recognition.NewProgressTracker(1, progress)
	tracker.Advance(0)

	args := r.buildArgs(audioPath, outputDir)
	logger := logging.WithContext(ctx, r.logger)
	logger.Debug("running whisperx", logging.String("command", r.binary+" "+strings.Join(redactArgs(args), " ")))

	if output, err := r.run(context.WithoutCancel(ctx), args...); err != nil {
		message := lastLines(string(output), 5)
		if message == "" {
			message = "whisperx failed"
		}
		return recognition.Result{}, services.Wrap(services.ErrRecognition, "whisperx", "run", message, err)
	}

	jsonPath := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))+".json")
	payload, err := LoadPayload(jsonPath)
	if err != nil {
		return recognition.Result{}, services.Wrap(services.ErrRecognition, "whisperx", "load output", "", err)
	}
	tracker.Complete()

	result := payload.toResult()
	result.Model = r.Model()
	if result.Language == "" {
		result.Language = r.cfg.Language
	}
	return result, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (r *Recognizer) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 40)

	if r.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", r.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", BeamSize,
		"--best_of", BestOf,
		"--temperature", Temperature,
		"--patience", Patience,
	)

	vadMethod := r.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && r.cfg.HFToken != "" {
		args = append(args, "--hf_token", r.cfg.HFToken)
	}

	if lang := language.ToISO2(r.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if r.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}

func (r *Recognizer) run(ctx context.Context, args ...string) ([]byte, error) {
	if r.commandRunner != nil {
		return r.commandRunner(ctx, r.binary, args...)
	}
	cmd := exec.CommandContext(ctx, r.binary, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	return cmd.CombinedOutput()
}

// Word represents a single word with timing from WhisperX output.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words"`
}

// Payload is the JSON document WhisperX writes per input file.
type Payload struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// LoadPayload reads a WhisperX JSON file.
func LoadPayload(jsonPath string) (Payload, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return Payload{}, err
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return Payload{}, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload, nil
}

func (p Payload) toResult() recognition.Result {
	result := recognition.Result{Backend: Name, Language: language.ToISO2(p.Language)}
	parts := make([]string, 0, len(p.Segments))
	for _, seg := range p.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, recognition.Segment{Start: seg.Start, End: seg.End, Text: text})
		parts = append(parts, text)
	}
	result.Text = strings.Join(parts, " ")
	return result
}

func redactArgs(args []string) []string {
	out := append([]string(nil), args...)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "--hf_token" {
			out[i+1] = "***"
		}
	}
	return out
}

func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}
