package transcript

import (
	"strings"

	"vidscribe/internal/recognition"
)

// DefaultPauseThreshold is the silence, in seconds, that separates two lines.
const DefaultPauseThreshold = 0.8

// Line is a run of words spoken without a long pause. Start is the start time
// of the first word.
type Line struct {
	Start float64
	Words []string
}

// Text joins the words with single spaces.
func (l Line) Text() string {
	return strings.Join(l.Words, " ")
}

// Reconstruct groups time-ordered words into lines, starting a new line when
// the gap between a word's start and the previous word's end exceeds pause.
func Reconstruct(words []recognition.Word, pause float64) []Line {
	var lines []Line
	var current *Line
	var prevEnd float64
	for _, w := range words {
		if current != nil && w.Start-prevEnd > pause {
			lines = append(lines, *current)
			current = nil
		}
		if current == nil {
			current = &Line{Start: w.Start}
		}
		current.Words = append(current.Words, w.Text)
		prevEnd = w.End
	}
	if current != nil {
		lines = append(lines, *current)
	}
	return lines
}

// FromSegments converts engine-native segments into lines, one per segment.
// Segments without text are dropped.
func FromSegments(segments []recognition.Segment) []Line {
	lines := make([]Line, 0, len(segments))
	for _, seg := range segments {
		words := strings.Fields(seg.Text)
		if len(words) == 0 {
			continue
		}
		lines = append(lines, Line{Start: seg.Start, Words: words})
	}
	return lines
}
