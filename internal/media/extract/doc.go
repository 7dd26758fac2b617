// Package extract converts a video file's dialogue track into the normalized
// audio the recognizers consume: mono, 16 kHz, signed 16-bit PCM WAV written
// beside the source as <base>.wav.
//
// When ffprobe reports more than one audio stream the track is chosen with
// internal/media/audio and mapped explicitly; otherwise ffmpeg's default
// stream selection applies.
package extract
