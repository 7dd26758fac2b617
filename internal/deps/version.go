package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// ProbeVersion runs "<binary> -version" and returns the first output line,
// for example "ffmpeg version 7.1 Copyright ...". An empty string means the
// version could not be determined.
func ProbeVersion(ctx context.Context, binary string) string {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, binary, "-version").Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return shortVersion(line)
}

// shortVersion trims the copyright tail ffmpeg prints after the version.
func shortVersion(line string) string {
	line = strings.TrimSpace(line)
	if idx := strings.Index(line, " Copyright"); idx > 0 {
		line = line[:idx]
	}
	return line
}
