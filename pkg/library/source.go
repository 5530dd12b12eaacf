package library

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
)

// Document is a candidate document and the root it was found under
type Document struct {
	Path string
	Root string
}

// DocumentSource enumerates documents whose file name matches a pattern
type DocumentSource interface {
	Documents(pattern string) ([]Document, error)
}

// FileSystemSource finds documents recursively beneath a set of roots
type FileSystemSource struct {
	roots []string
	log   *logrus.Logger
}

// NewFileSystemSource creates a source over roots
func NewFileSystemSource(roots []string, log *logrus.Logger) *FileSystemSource {
	if log == nil {
		log = logrus.New()
	}
	return &FileSystemSource{
		roots: append([]string(nil), roots...),
		log:   log,
	}
}

// Roots returns the configured roots
func (s *FileSystemSource) Roots() []string {
	return append([]string(nil), s.roots...)
}

// Documents returns every regular file beneath the roots whose base name
// matches pattern (case-sensitive glob), sorted by path. Missing roots are
// skipped.
func (s *FileSystemSource) Documents(pattern string) ([]Document, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid document pattern %q: %w", pattern, err)
	}

	seen := make(map[string]bool)
	docs := make([]Document, 0)

	for _, root := range s.roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
		}

		info, err := os.Stat(abs)
		if os.IsNotExist(err) {
			s.log.Debugf("Document root does not exist: %s", abs)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read root %s: %w", abs, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("document root %s is not a directory", abs)
		}

		// The root is walked rather than globbed so that metacharacters in
		// its path are never read as pattern syntax. The trailing separator
		// makes WalkDir follow a symlinked root.
		walkRoot := abs + string(filepath.Separator)
		err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == walkRoot {
					return err
				}
				s.log.WithError(err).Debugf("Skipping unreadable path %s", path)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || seen[path] {
				return nil
			}
			if ok, _ := filepath.Match(pattern, d.Name()); !ok {
				return nil
			}
			fi, err := os.Stat(path)
			if err != nil || !fi.Mode().IsRegular() {
				return nil
			}
			seen[path] = true
			docs = append(docs, Document{Path: path, Root: abs})
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", abs, err)
		}
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	s.log.Debugf("Found %d documents matching %s", len(docs), pattern)
	return docs, nil
}

// StaticSource serves fixed document lists keyed by pattern, in the given
// order
type StaticSource map[string][]Document

// Documents implements DocumentSource
func (s StaticSource) Documents(pattern string) ([]Document, error) {
	return append([]Document(nil), s[pattern]...), nil
}
