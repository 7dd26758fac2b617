package transcript

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vidscribe/internal/services"
)

const (
	// SummaryFileName is written in the root folder.
	SummaryFileName = "summary.txt"
	// ErrorLogFileName is maintained by the batch job in the root folder.
	ErrorLogFileName = "error_log.txt"
)

// SummaryResult describes a written summary file.
type SummaryResult struct {
	Path        string
	Transcripts int
}

// WriteSummary concatenates every transcript under root whose source video
// (any of exts, case-insensitive) still exists into root/summary.txt. Each
// transcript is preceded by a "--- <file name> ---" separator. The file is
// rewritten from scratch on every call.
func WriteSummary(root string, exts []string) (SummaryResult, error) {
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	sources := make(map[string]struct{})
	var transcripts []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		ext := filepath.Ext(path)
		base := strings.TrimSuffix(path, ext)
		switch {
		case ext == ".txt":
			if filepath.Dir(path) == filepath.Clean(root) {
				name := d.Name()
				if name == SummaryFileName || name == ErrorLogFileName {
					return nil
				}
			}
			transcripts = append(transcripts, path)
		default:
			if _, ok := allowed[strings.ToLower(ext)]; ok {
				sources[base] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return SummaryResult{}, services.Wrap(services.ErrDiscovery, "summary", "walk", root, err)
	}

	var buf bytes.Buffer
	count := 0
	for _, path := range transcripts {
		if _, ok := sources[strings.TrimSuffix(path, ".txt")]; !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return SummaryResult{}, services.Wrap(services.ErrWrite, "summary", "read transcript", path, err)
		}
		fmt.Fprintf(&buf, "--- %s ---\n", filepath.Base(path))
		buf.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
		count++
	}

	dest := filepath.Join(root, SummaryFileName)
	if err := atomicWrite(dest, buf.Bytes()); err != nil {
		return SummaryResult{}, services.Wrap(services.ErrWrite, "summary", "write", dest, err)
	}
	return SummaryResult{Path: dest, Transcripts: count}, nil
}
