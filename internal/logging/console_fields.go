package logging

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type infoField struct {
	label string
	value string
}

const infoAttrLimit = 8

// infoHighlightKeys are rendered first, in this order, on INFO and above.
var infoHighlightKeys = []string{
	FieldAlert,
	FieldEventType,
	FieldProgressPercent,
	FieldErrorMessage,
	FieldErrorHint,
	FieldImpact,
	"error",
	"backend",
	"model",
	"language",
	"total",
	"processed",
	"skipped",
	"failed",
	"remaining",
	"status",
	"audio_duration",
	"stage_duration",
	"job_duration",
	"transcript",
	"lines",
}

// selectInfoFields returns formatted info-level fields and a count of hidden entries.
// limit=0 means no limit. includeDebug controls whether debug-only keys are allowed.
func selectInfoFields(attrs []kv, limit int, includeDebug bool) ([]infoField, int) {
	if len(attrs) == 0 {
		return nil, 0
	}
	if limit < 0 {
		limit = 0
	}
	used := make([]bool, len(attrs))
	result := make([]infoField, 0, infoAttrLimit)
	hidden := 0

	consider := func(idx int) {
		attr := attrs[idx]
		used[idx] = true
		if skipInfoKey(attr.key) {
			return
		}
		if !includeDebug && isDebugOnlyKey(attr.key) {
			hidden++
			return
		}
		val := formatValueForKey(attr.key, attr.value)
		if !includeDebug && shouldHideInfoValue(attr.key, val) {
			hidden++
			return
		}
		if limit > 0 && len(result) >= limit {
			hidden++
			return
		}
		result = append(result, infoField{label: displayLabel(attr.key), value: val})
	}

	for _, key := range infoHighlightKeys {
		for idx, attr := range attrs {
			if !used[idx] && attr.key == key {
				consider(idx)
				break
			}
		}
	}
	for idx := range attrs {
		if !used[idx] {
			consider(idx)
		}
	}
	return result, hidden
}

// formatValueForKey applies display formatting based on the key name.
func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()

	if isDurationKey(key) {
		switch v.Kind() {
		case slog.KindDuration:
			return formatDurationHuman(v.Duration())
		case slog.KindFloat64:
			return formatDurationHuman(time.Duration(v.Float64() * float64(time.Second)))
		}
	}
	if isPercentKey(key) {
		switch v.Kind() {
		case slog.KindFloat64:
			return fmt.Sprintf("%.0f%%", v.Float64())
		case slog.KindInt64:
			return fmt.Sprintf("%d%%", v.Int64())
		}
	}
	if v.Kind() == slog.KindBool {
		if v.Bool() {
			return "yes"
		}
		return "no"
	}

	value := formatValue(v)
	if key == "error" || key == FieldErrorMessage {
		value = truncateErrorValue(value)
	}
	return value
}

func isDurationKey(key string) bool {
	return strings.HasSuffix(key, "_duration") || key == "elapsed" || key == "duration"
}

func isPercentKey(key string) bool {
	return strings.HasSuffix(key, "_percent")
}

func formatDurationHuman(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func truncateErrorValue(value string) string {
	value = strings.TrimSpace(value)
	const maxLen = 200
	if len(value) > maxLen {
		value = value[:maxLen] + "…"
	}
	return value
}

func skipInfoKey(key string) bool {
	switch key {
	case "", FieldItemIndex, FieldItemPath, FieldStage, FieldComponent:
		return true
	default:
		return false
	}
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case "", FieldJobID, "command", "audio_path", "chunk_frames", "frames":
		return true
	}
	return strings.HasSuffix(key, "_path")
}

func shouldHideInfoValue(key, value string) bool {
	switch key {
	case FieldErrorMessage, "error", FieldErrorHint:
		return false
	}
	return len(value) > 120
}

// repeatableField reports whether a label is shown even when unchanged since
// the previous INFO line for the same subject.
func repeatableField(label string) bool {
	switch label {
	case "Event", "Progress", "Error", "Error Message":
		return true
	default:
		return false
	}
}

func displayLabel(key string) string {
	switch key {
	case FieldAlert:
		return "Alert"
	case FieldEventType:
		return "Event"
	case FieldProgressPercent:
		return "Progress"
	case FieldErrorHint:
		return "Hint"
	case FieldJobID:
		return "Job"
	case "audio_duration":
		return "Audio"
	case "stage_duration", "job_duration":
		return "Elapsed"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	if key == "" {
		return ""
	}
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		parts[i] = capitalizeASCII(part)
	}
	return strings.Join(parts, " ")
}

func capitalizeASCII(value string) string {
	switch len(value) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(value)
	default:
		lower := strings.ToLower(value)
		return strings.ToUpper(lower[:1]) + lower[1:]
	}
}

func infoSummaryKey(subj subject) string {
	switch {
	case subj.itemIndex != "":
		return "item:" + subj.itemIndex
	case subj.component != "":
		return subj.component
	default:
		return ""
	}
}
