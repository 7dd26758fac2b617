package recognition

// ProgressTracker converts frames consumed into percent notifications.
type ProgressTracker struct {
	total       int64
	read        int64
	lastPercent int
	notify      ProgressFunc
}

// NewProgressTracker reports progress against totalFrames through notify,
// which may be nil.
func NewProgressTracker(totalFrames int64, notify ProgressFunc) *ProgressTracker {
	return &ProgressTracker{total: totalFrames, lastPercent: -1, notify: notify}
}

// Advance records frames as consumed and notifies when the whole-number
// percentage changes.
func (p *ProgressTracker) Advance(frames int) {
	p.read += int64(frames)
	p.emit(p.percent())
}

// Complete reports 100%.
func (p *ProgressTracker) Complete() {
	p.emit(100)
}

// Percent returns the last reported percentage, or -1 before any report.
func (p *ProgressTracker) Percent() int {
	return p.lastPercent
}

func (p *ProgressTracker) percent() int {
	if p.total <= 0 {
		return 100
	}
	return int(min(100, p.read*100/p.total))
}

func (p *ProgressTracker) emit(percent int) {
	if percent <= p.lastPercent {
		return
	}
	p.lastPercent = percent
	if p.notify != nil {
		p.notify(percent)
	}
}
