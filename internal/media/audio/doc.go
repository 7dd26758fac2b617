// Package audio picks the audio stream to transcribe from a multi-track
// container.
//
// Candidates are ranked by:
//  1. Language matching the configured recognition hint
//  2. Main programme audio over commentary or described-video tracks
//  3. The container's default disposition
//  4. Container order
//
// Select returns a Selection whose Ordinal feeds ffmpeg's "-map 0:a:N".
package audio
