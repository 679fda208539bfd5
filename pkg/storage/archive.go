package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Archive keeps copies of generated export documents on disk so operators
// can pull past timetables without regenerating them.
type Archive struct {
	dir string
}

// NewArchive ensures the directory exists and returns a handle.
func NewArchive(dir string) (*Archive, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Save writes the document under the archive directory. The filename must
// not escape it.
func (a *Archive) Save(filename string, data []byte) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "..") {
		return "", fmt.Errorf("invalid archive filename %q", filename)
	}

	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write archive file: %w", err)
	}
	return path, nil
}

// Prune deletes archived documents older than maxAge and returns how many
// were removed.
func (a *Archive) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return 0, fmt.Errorf("read archive directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(a.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// List returns archived filenames, newest first.
func (a *Archive) List() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("read archive directory: %w", err)
	}

	type dated struct {
		name string
		mod  time.Time
	}
	files := make([]dated, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, dated{name: entry.Name(), mod: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.After(files[j].mod) })

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}
