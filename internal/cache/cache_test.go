package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Reinforcement Learning!":  "reinforcement-learning",
		"Deep  Learning -- 2024":   "deep-learning-2024",
		"  (unspecified)  ":        "unspecified",
		"already-slugified-string": "already-slugified-string",
	}
	for in, want := range cases {
		require.Equal(t, want, Slugify(in), in)
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, s := range []string{"Course: Ωmega & Friends", "A/B Testing", "x"} {
		once := Slugify(s)
		require.Equal(t, once, Slugify(once))
	}
}

func TestNewKey(t *testing.T) {
	k := NewKey("Reinforcement Learning!", "/decks/lecture 03.pdf", 7)
	require.Equal(t, "reinforcement-learning", k.CourseSlug)
	require.Equal(t, "lecture 03", k.DocStem)
	require.Equal(t, 7, k.Page)
}

func TestLookupRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	k := Key{CourseSlug: "rl", DocStem: "lecture-01", Page: 3}

	_, hit, err := s.Lookup(k, false)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, s.WriteNote(k, "**Explanation:**\nvalue iteration"))

	text, hit, err := s.Lookup(k, false)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "**Explanation:**\nvalue iteration", text)
}

func TestLookupForceAlwaysMisses(t *testing.T) {
	s := New(t.TempDir())
	k := Key{CourseSlug: "rl", DocStem: "lecture-01", Page: 1}
	require.NoError(t, s.WriteNote(k, "cached"))

	_, hit, err := s.Lookup(k, true)
	require.NoError(t, err)
	require.False(t, hit)
}

func TestWriteNoteOverwrites(t *testing.T) {
	s := New(t.TempDir())
	k := Key{CourseSlug: "rl", DocStem: "lecture-01", Page: 2}
	require.NoError(t, s.WriteNote(k, "old"))
	require.NoError(t, s.WriteNote(k, "new"))

	text, hit, err := s.Lookup(k, false)
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "new", text)

	// No temp file residue next to the note.
	entries, err := os.ReadDir(filepath.Dir(s.NotePath(k)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestPathsLayout(t *testing.T) {
	s := New("/tmp/cacheroot")
	k := Key{CourseSlug: "rl", DocStem: "lec", Page: 12}
	require.Equal(t, filepath.Join("/tmp/cacheroot", "rl", "lec", "slide_012", "note.md"), s.NotePath(k))
	require.Equal(t, filepath.Join("/tmp/cacheroot", "rl", "lec", "slide_012", "note.pdf"), s.FragmentPath(k))
}
