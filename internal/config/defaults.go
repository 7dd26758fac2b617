package config

const (
	defaultLogDir         = "~/.local/share/vidscribe/logs"
	defaultStateDir       = "~/.local/state/vidscribe"
	defaultBackend        = BackendVosk
	defaultVoskURL        = "ws://127.0.0.1:2700"
	defaultVoskChunk      = 4000
	defaultVoskDial       = 10
	defaultWhisperXModel  = "large-v3"
	defaultVADMethod      = "silero"
	defaultPauseThreshold = 0.8
	defaultWatchDebounce  = 5
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Recognition backend identifiers.
const (
	BackendVosk     = "vosk"
	BackendWhisperX = "whisperx"
)

// DefaultExtensions lists the video containers picked up during discovery.
var DefaultExtensions = []string{".mp4", ".mov", ".mkv", ".avi", ".webm", ".mpeg", ".mpg"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Recognition: Recognition{
			Backend: defaultBackend,
		},
		Vosk: Vosk{
			URL:         defaultVoskURL,
			ChunkFrames: defaultVoskChunk,
			Words:       true,
			DialTimeout: defaultVoskDial,
		},
		WhisperX: WhisperX{
			Model:     defaultWhisperXModel,
			VADMethod: defaultVADMethod,
		},
		Batch: Batch{
			Extensions:     append([]string(nil), DefaultExtensions...),
			SkipExisting:   true,
			PauseThreshold: defaultPauseThreshold,
			KeepAudio:      true,
			WatchDebounce:  defaultWatchDebounce,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
