// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect runs ffprobe once per source file; the batch pipeline uses the
// result to choose the audio stream that gets extracted and as a duration
// fallback when the extracted WAV header cannot be read.
package ffprobe
