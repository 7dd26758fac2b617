package vosk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"vidscribe/internal/config"
	"vidscribe/internal/logging"
	"vidscribe/internal/media/wav"
	"vidscribe/internal/recognition"
	"vidscribe/internal/services"
)

// Name is the backend identifier.
const Name = config.BackendVosk

// DefaultChunkFrames is the number of frames sent per websocket message.
const DefaultChunkFrames = 4000

// Config controls the Vosk session.
type Config struct {
	URL         string
	ChunkFrames int
	Words       bool
	DialTimeout time.Duration
	Model       string
	Language    string
}

// Recognizer streams audio to a Vosk server.
type Recognizer struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *slog.Logger
}

// New creates a Vosk recognizer.
func New(cfg Config, logger *slog.Logger) *Recognizer {
	if cfg.ChunkFrames <= 0 {
		cfg.ChunkFrames = DefaultChunkFrames
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	return &Recognizer{
		cfg:    cfg,
		dialer: &websocket.Dialer{HandshakeTimeout: cfg.DialTimeout},
		logger: logging.NewComponentLogger(logger, "vosk"),
	}
}

// NewFromConfig builds a recognizer from application configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Recognizer {
	return New(Config{
		URL:         cfg.Vosk.URL,
		ChunkFrames: cfg.Vosk.ChunkFrames,
		Words:       cfg.Vosk.Words,
		DialTimeout: time.Duration(cfg.Vosk.DialTimeout) * time.Second,
		Model:       cfg.Vosk.Model,
		Language:    cfg.Recognition.Language,
	}, logger)
}

// Name implements recognition.Recognizer.
func (r *Recognizer) Name() string {
	return Name
}

// Check dials the server and closes the connection again.
func (r *Recognizer) Check(ctx context.Context) error {
	conn, err := r.dial(ctx)
	if err != nil {
		return err
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return conn.Close()
}

type sessionConfig struct {
	Config struct {
		SampleRate int `json:"sample_rate"`
		Words      int `json:"words"`
	} `json:"config"`
}

type wordResult struct {
	Conf  float64 `json:"conf"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

type reply struct {
	Partial *string      `json:"partial"`
	Text    *string      `json:"text"`
	Result  []wordResult `json:"result"`
}

// Transcribe implements recognition.Recognizer.
func (r *Recognizer) Transcribe(ctx context.Context, audioPath string, progress recognition.ProgressFunc) (recognition.Result, error) {
	logger := logging.WithContext(ctx, r.logger)
	if err := ctx.Err(); err != nil {
		return recognition.Result{}, recognition.ErrCancelled
	}

	reader, err := wav.Open(audioPath)
	if err != nil {
		return recognition.Result{}, services.Wrap(services.ErrRecognition, "transcribe", "open audio", "", err)
	}
	defer reader.Close()
	header := reader.Header()
	if header.Channels != 1 || header.BitsPerSample != 16 {
		return recognition.Result{}, services.Wrap(services.ErrRecognition, "transcribe", "validate audio",
			fmt.Sprintf("expected mono 16-bit PCM, got %d channels at %d bits", header.Channels, header.BitsPerSample), nil)
	}

	conn, err := r.dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return recognition.Result{}, recognition.ErrCancelled
		}
		return recognition.Result{}, err
	}
	defer conn.Close()
	// Unblock a pending read when the job is cancelled mid-chunk.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var session sessionConfig
	session.Config.SampleRate = header.SampleRate
	if r.cfg.Words {
		session.Config.Words = 1
	}
	if err := conn.WriteJSON(session); err != nil {
		return recognition.Result{}, r.sessionError(ctx, "send config", err)
	}

	logger.Debug("vosk session started",
		logging.String("url", r.cfg.URL),
		logging.Int("sample_rate", header.SampleRate),
		logging.Int("chunk_frames", r.cfg.ChunkFrames),
		logging.Any("frames", header.Frames()),
	)

	tracker := recognition.NewProgressTracker(header.Frames(), progress)
	var acc accumulator
	for {
		data, frames, err := reader.ReadFrames(r.cfg.ChunkFrames)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return recognition.Result{}, services.Wrap(services.ErrRecognition, "transcribe", "read audio", "", err)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			return recognition.Result{}, r.sessionError(ctx, "send audio", err)
		}
		if err := r.readReply(conn, &acc); err != nil {
			return recognition.Result{}, r.sessionError(ctx, "read reply", err)
		}
		tracker.Advance(frames)
		if ctx.Err() != nil {
			logger.Debug("vosk session cancelled", logging.Int("progress_percent", tracker.Percent()))
			return recognition.Result{}, recognition.ErrCancelled
		}
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`)); err != nil {
		return recognition.Result{}, r.sessionError(ctx, "send eof", err)
	}
	if err := r.readReply(conn, &acc); err != nil {
		return recognition.Result{}, r.sessionError(ctx, "read final result", err)
	}
	tracker.Complete()
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	result := recognition.Result{
		Text:     acc.text(),
		Backend:  Name,
		Model:    r.cfg.Model,
		Language: r.cfg.Language,
	}
	if r.cfg.Words {
		result.Words = acc.words
	}
	return result, nil
}

func (r *Recognizer) dial(ctx context.Context) (*websocket.Conn, error) {
	if strings.TrimSpace(r.cfg.URL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "vosk", "dial", "server url not configured", nil)
	}
	dialCtx, cancel := context.WithTimeout(ctx, r.cfg.DialTimeout)
	defer cancel()
	conn, _, err := r.dialer.DialContext(dialCtx, r.cfg.URL, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrRecognition, "vosk", "dial", r.cfg.URL, err)
	}
	return conn, nil
}

func (r *Recognizer) readReply(conn *websocket.Conn, acc *accumulator) error {
	msgType, payload, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	if msgType != websocket.TextMessage {
		return fmt.Errorf("unexpected message type %d", msgType)
	}
	var msg reply
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if msg.Text != nil {
		acc.add(*msg.Text, msg.Result)
	}
	return nil
}

func (r *Recognizer) sessionError(ctx context.Context, operation string, err error) error {
	if ctx.Err() != nil {
		return recognition.ErrCancelled
	}
	return services.Wrap(services.ErrRecognition, "vosk", operation, "", err)
}

// accumulator collects final utterances in arrival order.
type accumulator struct {
	texts []string
	words []recognition.Word
}

func (a *accumulator) add(text string, words []wordResult) {
	if text = strings.TrimSpace(text); text != "" {
		a.texts = append(a.texts, text)
	}
	for _, w := range words {
		a.words = append(a.words, recognition.Word{Text: w.Word, Start: w.Start, End: w.End})
	}
}

func (a *accumulator) text() string {
	return strings.Join(a.texts, " ")
}
