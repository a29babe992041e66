package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/local/decknotes/internal/cache"
	"github.com/local/decknotes/internal/compose"
)

type fakeExtractor struct {
	pages map[int]string
	total int
}

func (f *fakeExtractor) PageCount() int { return f.total }
func (f *fakeExtractor) PageText(page int) (string, error) {
	return f.pages[page], nil
}

type fakeGenerator struct {
	calls []int
	fail  bool
}

func (f *fakeGenerator) Generate(ctx context.Context, course, text string, page int) (string, error) {
	f.calls = append(f.calls, page)
	if f.fail {
		return "", errors.New("generation exhausted retries")
	}
	return fmt.Sprintf("**Explanation:**\nnotes for page %d", page), nil
}

type fakeRenderer struct {
	widths  []float64
	heights []float64
	failOn  int
	count   int
}

func (f *fakeRenderer) Render(ctx context.Context, text string, w, h float64) ([]byte, error) {
	f.count++
	f.widths = append(f.widths, w)
	f.heights = append(f.heights, h)
	if f.failOn != 0 && f.count == f.failOn {
		return nil, errors.New("renderer exited with status 1")
	}
	return []byte("%PDF-fragment " + text), nil
}

type fakeComposer struct{ pages []int }

func (f *fakeComposer) ComposePage(page int, fragment []byte, layout compose.Layout) (string, error) {
	f.pages = append(f.pages, page)
	return fmt.Sprintf("page_%03d_composed.pdf", page), nil
}

type fakeSink struct {
	appended []string
	saved    bool
}

func (f *fakeSink) Append(p string) { f.appended = append(f.appended, p) }
func (f *fakeSink) Save() error     { f.saved = true; return nil }

func testDeps(t *testing.T, gen *fakeGenerator, rend *fakeRenderer) (Dependencies, *fakeComposer, *fakeSink, *cache.Store) {
	t.Helper()
	comp := &fakeComposer{}
	sink := &fakeSink{}
	store := cache.New(t.TempDir())
	deps := Dependencies{
		Extractor: &fakeExtractor{total: 2, pages: map[int]string{1: "Intro slide", 2: "Second slide"}},
		Generator: gen,
		Renderer:  rend,
		Cache:     store,
		Composer:  comp,
		Sink:      sink,
		PageDims:  func(int) (float64, float64, error) { return 612, 792, nil },
	}
	return deps, comp, sink, store
}

func testOpts() Options {
	return Options{
		CourseName:  "Reinforcement Learning",
		DocPath:     "/decks/lecture01.pdf",
		Side:        compose.SideRight,
		MarginRatio: 1.0,
	}
}

func TestRunSinglePageSelection(t *testing.T) {
	gen := &fakeGenerator{}
	rend := &fakeRenderer{}
	deps, comp, sink, store := testDeps(t, gen, rend)

	opts := testOpts()
	opts.Selection = []int{1}
	require.NoError(t, Run(context.Background(), deps, opts))

	require.Equal(t, []int{1}, gen.calls)
	require.Equal(t, []int{1}, comp.pages)
	require.Equal(t, []string{"page_001_composed.pdf"}, sink.appended)
	require.True(t, sink.saved)

	// Notes rectangle equals slide size at ratio 1.0.
	require.Equal(t, []float64{612}, rend.widths)
	require.Equal(t, []float64{792}, rend.heights)

	// Cache artifacts exist only for slide_001.
	k1 := cache.NewKey(opts.CourseName, opts.DocPath, 1)
	_, err := os.Stat(store.NotePath(k1))
	require.NoError(t, err)
	_, err = os.Stat(store.FragmentPath(k1))
	require.NoError(t, err)
	k2 := cache.NewKey(opts.CourseName, opts.DocPath, 2)
	_, err = os.Stat(filepath.Dir(store.NotePath(k2)))
	require.True(t, os.IsNotExist(err))
}

func TestRunAllPagesWhenSelectionNil(t *testing.T) {
	gen := &fakeGenerator{}
	deps, comp, sink, _ := testDeps(t, gen, &fakeRenderer{})

	require.NoError(t, Run(context.Background(), deps, testOpts()))
	require.Equal(t, []int{1, 2}, gen.calls)
	require.Equal(t, []int{1, 2}, comp.pages)
	require.True(t, sink.saved)
}

func TestRunCacheHitSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{}
	rend := &fakeRenderer{}
	deps, _, _, _ := testDeps(t, gen, rend)

	opts := testOpts()
	opts.Selection = []int{1}
	require.NoError(t, Run(context.Background(), deps, opts))
	require.Len(t, gen.calls, 1)

	// Second run: cached note reused, generator untouched, fragment re-rendered.
	require.NoError(t, Run(context.Background(), deps, opts))
	require.Len(t, gen.calls, 1)
	require.Equal(t, 2, rend.count)
}

func TestRunForceRegenerates(t *testing.T) {
	gen := &fakeGenerator{}
	deps, _, _, _ := testDeps(t, gen, &fakeRenderer{})

	opts := testOpts()
	opts.Selection = []int{1}
	require.NoError(t, Run(context.Background(), deps, opts))

	opts.Force = true
	require.NoError(t, Run(context.Background(), deps, opts))
	require.Equal(t, []int{1, 1}, gen.calls)
}

func TestRunGeneratorFailureAbortsRun(t *testing.T) {
	gen := &fakeGenerator{fail: true}
	deps, comp, sink, _ := testDeps(t, gen, &fakeRenderer{})

	err := Run(context.Background(), deps, testOpts())
	require.Error(t, err)
	require.Empty(t, comp.pages)
	require.False(t, sink.saved)
}

func TestRunRenderFailureAbortsBeforeLaterPages(t *testing.T) {
	gen := &fakeGenerator{}
	rend := &fakeRenderer{failOn: 2}
	deps, comp, sink, store := testDeps(t, gen, rend)

	opts := testOpts()
	err := Run(context.Background(), deps, opts)
	require.Error(t, err)

	// Page 1 completed and its cache entry survives; page 2 never composed.
	require.Equal(t, []int{1}, comp.pages)
	require.False(t, sink.saved)
	k1 := cache.NewKey(opts.CourseName, opts.DocPath, 1)
	_, statErr := os.Stat(store.NotePath(k1))
	require.NoError(t, statErr)

	// Note for page 2 was cached before rendering failed, so a re-run
	// resumes without regenerating it.
	gen2 := &fakeGenerator{}
	deps.Generator = gen2
	deps.Renderer = &fakeRenderer{}
	deps.Sink = &fakeSink{}
	require.NoError(t, Run(context.Background(), deps, opts))
	require.Empty(t, gen2.calls)
}

func TestRunBadSideRejected(t *testing.T) {
	deps, _, _, _ := testDeps(t, &fakeGenerator{}, &fakeRenderer{})
	opts := testOpts()
	opts.Side = "bottom"
	require.Error(t, Run(context.Background(), deps, opts))
}
