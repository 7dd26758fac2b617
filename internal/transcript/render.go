package transcript

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"vidscribe/internal/recognition"
)

// Document is a rendered-ready transcript.
type Document struct {
	// Name is the display name shown in the header.
	Name string
	// Duration of the audio in seconds; zero or negative omits it from the header.
	Duration float64
	Lines    []Line
	// Text is used only when Lines is empty, for results without timing.
	Text string
}

// NewDocument builds a document from a recognition result. Words take
// precedence over segments; plain text is the last resort.
func NewDocument(name string, duration float64, result recognition.Result, pause float64) Document {
	doc := Document{Name: name, Duration: duration}
	switch {
	case len(result.Words) > 0:
		doc.Lines = Reconstruct(result.Words, pause)
	case len(result.Segments) > 0:
		doc.Lines = FromSegments(result.Segments)
	default:
		doc.Text = strings.TrimSpace(result.Text)
	}
	return doc
}

// Empty reports whether the document carries no transcript text.
func (d Document) Empty() bool {
	return len(d.Lines) == 0 && d.Text == ""
}

// Header renders the first line of a transcript file, without newline.
func Header(name string, duration float64) string {
	name = norm.NFC.String(strings.TrimSpace(name))
	if duration > 0 {
		return fmt.Sprintf("# %s | Duration: %.1f sec", name, duration)
	}
	return "# " + name
}

// FormatLine renders one line as "[<start:.1f>] <text>".
func FormatLine(line Line) string {
	return fmt.Sprintf("[%.1f] %s", line.Start, line.Text())
}

// Render returns the full file contents, NFC-normalized, newline terminated.
func Render(doc Document) string {
	var b strings.Builder
	b.WriteString(Header(doc.Name, doc.Duration))
	b.WriteByte('\n')
	for _, line := range doc.Lines {
		b.WriteString(FormatLine(line))
		b.WriteByte('\n')
	}
	if len(doc.Lines) == 0 && doc.Text != "" {
		b.WriteString(doc.Text)
		b.WriteByte('\n')
	}
	return norm.NFC.String(b.String())
}
