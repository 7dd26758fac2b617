package batch

import (
	"errors"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"vidscribe/internal/services"
)

// WorkItem describes one source video and the files derived from it.
type WorkItem struct {
	SourcePath     string
	BaseName       string
	AudioPath      string
	TranscriptPath string
	DisplayName    string
}

// NewWorkItem derives the output paths for a source file.
func NewWorkItem(source string) WorkItem {
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return WorkItem{
		SourcePath:     source,
		BaseName:       base,
		AudioPath:      base + ".wav",
		TranscriptPath: base + ".txt",
		DisplayName:    norm.NFC.String(filepath.Base(base)),
	}
}

// Walk lazily yields the regular files under root whose extension is in exts,
// compared case-insensitively, in lexical walk order. An unreadable root is
// reported as a single ErrDiscovery error; unreadable subdirectories are
// skipped.
func Walk(root string, exts []string) iter.Seq2[WorkItem, error] {
	allowed := extensionSet(exts)
	return func(yield func(WorkItem, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
				return nil
			}
			if !yield(NewWorkItem(path), nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !errors.Is(err, fs.SkipAll) {
			yield(WorkItem{}, services.Wrap(services.ErrDiscovery, "discovery", "walk", root, err))
		}
	}
}

// Discover collects Walk into a slice.
func Discover(root string, exts []string) ([]WorkItem, error) {
	var items []WorkItem
	for item, err := range Walk(root, exts) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
