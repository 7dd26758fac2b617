package batch

import "time"

// EventKind identifies a progress event emitted by the Orchestrator.
type EventKind string

const (
	EventStarted       EventKind = "started"
	EventSkipped       EventKind = "skipped"
	EventExtracting    EventKind = "extracting"
	EventTranscribing  EventKind = "transcribing"
	EventProgress      EventKind = "progress"
	EventItemCompleted EventKind = "item_completed"
	EventItemFailed    EventKind = "item_failed"
	EventCompleted     EventKind = "completed"
	EventCancelled     EventKind = "cancelled"
	EventFailedToStart EventKind = "failed_to_start"
)

// Terminal reports whether the event ends a job.
func (k EventKind) Terminal() bool {
	switch k {
	case EventCompleted, EventCancelled, EventFailedToStart:
		return true
	}
	return false
}

// Event is a structured progress notification. Index is 1-based and zero for
// job-level events.
type Event struct {
	Kind    EventKind
	Index   int
	Total   int
	Path    string
	Stage   string
	Percent int
	Message string
}

// Sink receives events on the job goroutine. It must not block for long.
type Sink func(Event)

// Status is the terminal state of a job.
type Status string

const (
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
	StatusFailedToStart Status = "failed_to_start"
)

// Summary reports the outcome of a job.
type Summary struct {
	JobID     string
	Root      string
	Total     int
	Processed int
	Skipped   int
	Failed    int
	Remaining int
	Status    Status
	// Err is set when Status is failed_to_start.
	Err     error
	Elapsed time.Duration
	Errors  []ErrorRecord
}
