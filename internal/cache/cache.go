package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses runs of non-alphanumeric characters to a
// single hyphen and strips leading/trailing hyphens. The result is stable
// and filesystem safe; slugifying a slug is a no-op.
func Slugify(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// Key identifies one annotation record: which course, which deck, which page.
type Key struct {
	CourseSlug string
	DocStem    string
	Page       int
}

// Store is the on-disk annotation cache. Layout:
//
//	root/<course_slug>/<doc_stem>/slide_NNN/note.md   annotation text
//	root/<course_slug>/<doc_stem>/slide_NNN/note.pdf  last rendered fragment
type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

// NewKey derives the cache key for a page of a document within a course.
func NewKey(courseName, docPath string, page int) Key {
	stem := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	return Key{CourseSlug: Slugify(courseName), DocStem: stem, Page: page}
}

func (s *Store) dir(k Key) string {
	return filepath.Join(s.root, k.CourseSlug, k.DocStem, fmt.Sprintf("slide_%03d", k.Page))
}

// NotePath returns the annotation text location for k.
func (s *Store) NotePath(k Key) string { return filepath.Join(s.dir(k), "note.md") }

// FragmentPath returns the rendered fragment location for k.
func (s *Store) FragmentPath(k Key) string { return filepath.Join(s.dir(k), "note.pdf") }

// Lookup returns the cached annotation text for k. A hit requires an
// existing record and force unset; a forced lookup always misses so the
// caller regenerates.
func (s *Store) Lookup(k Key, force bool) (string, bool, error) {
	if force {
		return "", false, nil
	}
	data, err := os.ReadFile(s.NotePath(k))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read cached note: %w", err)
	}
	log.Debug().Str("note", s.NotePath(k)).Int("chars", len(data)).Msg("annotation cache hit")
	return string(data), true, nil
}

// WriteNote persists annotation text for k, replacing any prior record.
// The write goes through a temp file and rename so an interrupted run never
// leaves a torn note behind to be mistaken for a valid cache entry.
func (s *Store) WriteNote(k Key, text string) error {
	dir := s.dir(k)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "note-*.md")
	if err != nil {
		return fmt.Errorf("create temp note: %w", err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp note: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp note: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.NotePath(k)); err != nil {
		return fmt.Errorf("rename temp note: %w", err)
	}
	return nil
}

// WriteFragment persists the last rendered fragment bytes for k. This is a
// debugging artifact; it is never read back by the pipeline.
func (s *Store) WriteFragment(k Key, data []byte) error {
	dir := s.dir(k)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(s.FragmentPath(k), data, 0o644); err != nil {
		return fmt.Errorf("write fragment: %w", err)
	}
	return nil
}
