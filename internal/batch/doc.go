// Package batch walks a folder of video files and turns each one into a
// timestamped transcript.
//
// The Orchestrator processes discovered items strictly one at a time:
// extract audio, recognize speech, reconstruct lines, write the transcript.
// Failures are isolated per item and appended to error_log.txt under the
// root; cancellation stops the job before the next item or chunk.
//
// Runner wraps the Orchestrator with a single-job guard (in-process and a
// machine-wide file lock) and runs the job on its own goroutine. Watch reruns
// jobs when new media shows up.
package batch
