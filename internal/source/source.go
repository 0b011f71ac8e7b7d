// Package source discovers content documents on disk. Discovery walks the
// configured content directory and yields markdown files in deterministic
// lexical order; everything else is left for the renderer to ignore.
package source

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagepress/internal/logfields"
)

var (
	// ErrContentDirNotFound indicates the configured content directory does not exist.
	ErrContentDirNotFound = errors.New("content directory not found")

	// ErrWalkFailed indicates filesystem traversal of the content directory failed.
	ErrWalkFailed = errors.New("content directory walk failed")

	// ErrFileReadFailed indicates reading a discovered content file failed.
	ErrFileReadFailed = errors.New("content file read failed")
)

// File represents a discovered content document.
type File struct {
	Path         string // absolute path to the file
	RelativePath string // slash-separated path relative to the content directory
	Name         string // base name without extension
	Extension    string // extension including the dot
	Content      []byte // loaded on demand
}

// LoadContent reads the file body from disk. Repeated calls are no-ops once
// content is present.
func (f *File) LoadContent() error {
	if f.Content != nil {
		return nil
	}
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFileReadFailed, f.Path, err)
	}
	f.Content = content
	return nil
}

// Discovery handles content file discovery for a single content directory.
type Discovery struct {
	dir string
}

// NewDiscovery creates a discovery instance rooted at dir.
func NewDiscovery(dir string) *Discovery {
	return &Discovery{dir: dir}
}

// Discover finds all markdown documents under the content directory. Hidden
// files and directories are skipped, so caches like .pagepress never leak
// into the corpus. An empty directory yields an empty slice, not an error.
func (d *Discovery) Discover() ([]File, error) {
	info, err := os.Stat(d.dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrContentDirNotFound, d.dir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, d.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrContentDirNotFound, d.dir)
	}

	var files []File

	err = filepath.Walk(d.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		hidden := strings.HasPrefix(info.Name(), ".") && info.Name() != "."

		if info.IsDir() {
			if hidden && path != d.dir {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}
		if !isMarkdownFile(path) {
			return nil
		}

		relPath, err := filepath.Rel(d.dir, path)
		if err != nil {
			return fmt.Errorf("relative path for %s: %w", path, err)
		}
		relPath = filepath.ToSlash(relPath)

		files = append(files, File{
			Path:         path,
			RelativePath: relPath,
			Name:         strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())),
			Extension:    filepath.Ext(info.Name()),
		})

		slog.Debug("Discovered content file", logfields.Path(relPath))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrWalkFailed, d.dir, err)
	}

	slog.Info("Content discovery complete", logfields.Path(d.dir), logfields.Count(len(files)))
	return files, nil
}

// isMarkdownFile checks whether a file carries a markdown extension.
func isMarkdownFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}
