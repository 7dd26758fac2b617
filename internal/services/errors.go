package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExtraction    = errors.New("audio extraction error")
	ErrRecognition   = errors.New("recognition error")
	ErrWrite         = errors.New("transcript write error")
	ErrDiscovery     = errors.New("discovery error")
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
)

// Error-log stage tags. These strings are part of the error_log.txt format.
const (
	TagExtraction  = "Audio Extract Error"
	TagRecognition = "Transcription Error"
	TagWrite       = "Write Error"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureTag maps a stage error to the tag recorded in the error log. Errors
// without a known marker are attributed to transcription.
func FailureTag(err error) string {
	switch {
	case errors.Is(err, ErrExtraction):
		return TagExtraction
	case errors.Is(err, ErrWrite):
		return TagWrite
	default:
		return TagRecognition
	}
}

// Cause returns the innermost human-readable message of err, skipping the
// marker prefix so error log lines stay short.
func Cause(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	for _, marker := range []error{ErrExtraction, ErrRecognition, ErrWrite, ErrDiscovery, ErrExternalTool, ErrConfiguration} {
		if errors.Is(err, marker) {
			msg = strings.TrimPrefix(msg, marker.Error()+": ")
			break
		}
	}
	return strings.ReplaceAll(msg, "\n", " ")
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
