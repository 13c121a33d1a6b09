package selection

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// Files is an ordered list of candidate file names inside Folder.
type Files struct {
	Folder string
	Items  []string
}

// List reads the immediate entries of folder and keeps regular files, and
// symlinks to regular files, in directory listing order. Subdirectories are
// not descended into.
func List(folder string) (*Files, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read folder: %w", err)
	}

	files := &Files{Folder: folder, Items: make([]string, 0, len(entries))}
	for _, entry := range entries {
		if !isFile(folder, entry) {
			continue
		}
		files.Items = append(files.Items, entry.Name())
	}

	return files, nil
}

func isFile(folder string, entry fs.DirEntry) bool {
	mode := entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&fs.ModeSymlink == 0 {
		return false
	}

	// Dangling links are skipped like any other unreadable entry.
	info, err := os.Stat(filepath.Join(folder, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}

func (f *Files) Len() int {
	return len(f.Items)
}

// Paths returns the full path of every file, in order.
func (f *Files) Paths() []string {
	paths := make([]string, 0, len(f.Items))
	for _, name := range f.Items {
		paths = append(paths, filepath.Join(f.Folder, name))
	}
	return paths
}

// Exclude removes every file for which drop returns true and returns the removed names.
func (f *Files) Exclude(drop func(name string) bool) []string {
	var removed []string
	f.Items = slices.DeleteFunc(f.Items, func(name string) bool {
		if drop(name) {
			removed = append(removed, name)
			return true
		}
		return false
	})
	return removed
}
