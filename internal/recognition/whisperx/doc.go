// Package whisperx implements the whole-file recognition backend by running
// the WhisperX CLI through uvx and parsing its JSON output.
//
// A WhisperX run cannot be interrupted part way, so Transcribe observes
// cancellation only before the command starts; once started the command runs
// to completion. Progress is reported as 0% at start and 100% on success.
package whisperx
