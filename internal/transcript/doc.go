// Package transcript turns recognition results into the per-file text
// transcripts written beside each source video.
//
// Word timings are grouped into lines by Reconstruct: a pause longer than
// the threshold starts a new line. Engine-native segments become one line
// each. Every line renders as "[<start seconds, one decimal>] <text>"
// regardless of backend, under a "# <name> | Duration: <seconds> sec" header.
//
// WriteSummary concatenates the transcripts of a folder into summary.txt.
package transcript
