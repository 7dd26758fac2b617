package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"vidscribe/internal/batch"
	"vidscribe/internal/logging"
)

// progressPrinter renders batch events. On a terminal the transcription
// percentage is redrawn in place; otherwise it is printed in 25% steps.
type progressPrinter struct {
	out         io.Writer
	interactive bool
	colorize    bool
	sampler     *logging.ProgressSampler
	pending     bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	tty := shouldColorize(out)
	return &progressPrinter{
		out:         out,
		interactive: tty,
		colorize:    tty,
		sampler:     logging.NewProgressSampler(25),
	}
}

func (p *progressPrinter) handle(event batch.Event) {
	switch event.Kind {
	case batch.EventStarted:
		p.line(fmt.Sprintf("Found %d media files in %s", event.Total, event.Path))
	case batch.EventSkipped:
		p.line(p.itemPrefix(event) + "skipped (transcript exists)")
	case batch.EventExtracting:
		p.line(p.itemPrefix(event) + "extracting audio")
	case batch.EventTranscribing:
		p.sampler.Reset()
		p.line(p.itemPrefix(event) + "transcribing")
	case batch.EventProgress:
		p.progress(event)
	case batch.EventItemCompleted:
		p.line(p.itemPrefix(event) + "done (" + event.Message + ")")
	case batch.EventItemFailed:
		p.line(p.paint(ansiRed, p.itemPrefix(event)+"failed: "+event.Message))
	case batch.EventCompleted:
		p.line(p.paint(ansiGreen, "All videos processed."))
	case batch.EventCancelled:
		p.line(p.paint(ansiYellow, "Cancelled: "+event.Message))
	case batch.EventFailedToStart:
		p.line(p.paint(ansiRed, "Failed to start: "+event.Message))
	}
}

func (p *progressPrinter) progress(event batch.Event) {
	text := fmt.Sprintf("%stranscribing %3d%%", p.itemPrefix(event), event.Percent)
	if p.interactive {
		fmt.Fprintf(p.out, "\r\x1b[2K%s", text)
		p.pending = true
		return
	}
	if p.sampler.ShouldLog(event.Percent, event.Path) {
		p.line(text)
	}
}

func (p *progressPrinter) line(text string) {
	if p.pending {
		fmt.Fprintln(p.out)
		p.pending = false
	}
	fmt.Fprintln(p.out, text)
}

// finish terminates a pending in-place line.
func (p *progressPrinter) finish() {
	if p.pending {
		fmt.Fprintln(p.out)
		p.pending = false
	}
}

func (p *progressPrinter) itemPrefix(event batch.Event) string {
	return fmt.Sprintf("[%d/%d] %s: ", event.Index, event.Total, filepath.Base(event.Path))
}

func (p *progressPrinter) paint(color, text string) string {
	if !p.colorize {
		return text
	}
	return color + text + ansiReset
}

func renderSummary(summary batch.Summary) string {
	rows := [][]string{
		{"Job", summary.JobID},
		{"Root", summary.Root},
		{"Status", string(summary.Status)},
		{"Found", fmt.Sprintf("%d", summary.Total)},
		{"Processed", fmt.Sprintf("%d", summary.Processed)},
		{"Skipped", fmt.Sprintf("%d", summary.Skipped)},
		{"Failed", fmt.Sprintf("%d", summary.Failed)},
	}
	if summary.Remaining > 0 {
		rows = append(rows, []string{"Remaining", fmt.Sprintf("%d", summary.Remaining)})
	}
	rows = append(rows, []string{"Elapsed", summary.Elapsed.Round(time.Second).String()})
	if summary.Err != nil {
		rows = append(rows, []string{"Error", summary.Err.Error()})
	}
	var b strings.Builder
	b.WriteString(renderTable([]string{"Batch", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	if len(summary.Errors) > 0 {
		b.WriteString("\n")
		failures := make([][]string, 0, len(summary.Errors))
		for _, record := range summary.Errors {
			failures = append(failures, []string{filepath.Base(record.Path), record.Stage, record.Cause})
		}
		b.WriteString(renderTable([]string{"File", "Stage", "Cause"}, failures, nil))
	}
	return b.String()
}
