package audio

import (
	"strconv"
	"strings"

	"vidscribe/internal/language"
	"vidscribe/internal/media/ffprobe"
)

// Selection describes the audio stream chosen for transcription.
type Selection struct {
	Primary ffprobe.Stream
	// PrimaryIndex is the container stream index, -1 when there is no audio.
	PrimaryIndex int
	// Ordinal is the position among audio streams only.
	Ordinal int
	// Candidates is the number of audio streams considered.
	Candidates int
}

// Found reports whether any audio stream was selected.
func (s Selection) Found() bool {
	return s.PrimaryIndex >= 0
}

// Ambiguous reports whether the container offered more than one audio stream,
// which is when an explicit stream mapping matters.
func (s Selection) Ambiguous() bool {
	return s.Candidates > 1
}

// PrimaryLabel returns a human-readable summary of the selected stream.
func (s Selection) PrimaryLabel() string {
	if !s.Found() {
		return ""
	}
	return formatStreamSummary(s.Primary)
}

// Select returns the audio stream that most likely carries the main dialogue
// in the hinted language. An empty hint disables language preference.
func Select(streams []ffprobe.Stream, hint string) Selection {
	candidates := buildCandidates(streams, hint)
	if len(candidates) == 0 {
		return Selection{PrimaryIndex: -1, Ordinal: -1}
	}

	best := candidates[0]
	bestScore := score(best)
	for _, cand := range candidates[1:] {
		if s := score(cand); s > bestScore {
			best, bestScore = cand, s
		}
	}
	return Selection{
		Primary:      best.stream,
		PrimaryIndex: best.stream.Index,
		Ordinal:      best.order,
		Candidates:   len(candidates),
	}
}

type candidate struct {
	stream         ffprobe.Stream
	order          int
	languageMatch  bool
	secondary      bool
	defaultFlagged bool
}

func buildCandidates(streams []ffprobe.Stream, hint string) []candidate {
	result := make([]candidate, 0, len(streams))
	order := 0
	for _, stream := range streams {
		if !strings.EqualFold(stream.CodecType, "audio") {
			continue
		}
		result = append(result, candidate{
			stream:         stream,
			order:          order,
			languageMatch:  hint != "" && language.Matches(language.ExtractFromTags(stream.Tags), hint),
			secondary:      isSecondaryTrack(stream),
			defaultFlagged: stream.Disposition["default"] == 1,
		})
		order++
	}
	return result
}

func score(cand candidate) float64 {
	value := 0.0
	if cand.languageMatch {
		value += 1000
	}
	if cand.secondary {
		value -= 500
	}
	if cand.defaultFlagged {
		value += 100
	}
	// Prefer earlier tracks when scores tie.
	value -= float64(cand.order) * 0.1
	return value
}

func isSecondaryTrack(stream ffprobe.Stream) bool {
	if stream.Disposition["comment"] == 1 || stream.Disposition["visual_impaired"] == 1 {
		return true
	}
	title := strings.ToLower(stream.Tags["title"] + " " + stream.Tags["handler_name"])
	for _, keyword := range []string{"commentary", "audio description", "described video", "descriptive"} {
		if strings.Contains(title, keyword) {
			return true
		}
	}
	return false
}

func formatStreamSummary(stream ffprobe.Stream) string {
	parts := make([]string, 0, 4)
	if lang := language.ExtractFromTags(stream.Tags); lang != "" {
		parts = append(parts, lang)
	}
	codec := stream.CodecLong
	if codec == "" {
		codec = stream.CodecName
	}
	if codec != "" {
		parts = append(parts, codec)
	}
	if stream.Channels > 0 {
		parts = append(parts, strconv.Itoa(stream.Channels)+"ch")
	}
	if title := strings.TrimSpace(stream.Tags["title"]); title != "" {
		parts = append(parts, title)
	}
	if len(parts) == 0 {
		return "audio"
	}
	return strings.Join(parts, " | ")
}
