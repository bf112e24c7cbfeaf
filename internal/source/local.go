// Package source provides the concrete igor.Source implementations: a
// plain local directory and a git-backed checkout.
package source

import (
	"os"
	"path/filepath"

	"github.com/igor-vendor/igor/igor"
)

// Local reads a thundercloud or invar tree directly off the local
// filesystem rooted at Dir.
type Local struct {
	Dir string
}

func (l Local) List(path string) ([]igor.Entry, error) {
	full := filepath.Join(l.Dir, filepath.FromSlash(path))
	dirEntries, err := os.ReadDir(full)
	if err != nil {
		return nil, err
	}
	entries := make([]igor.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		kind := igor.KindFile
		if de.IsDir() {
			kind = igor.KindDir
		}
		entries = append(entries, igor.Entry{Name: de.Name(), Kind: kind})
	}
	return entries, nil
}

func (l Local) Read(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(l.Dir, filepath.FromSlash(path)))
}
