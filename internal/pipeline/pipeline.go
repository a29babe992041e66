package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/decknotes/internal/cache"
	"github.com/local/decknotes/internal/compose"
	"github.com/local/decknotes/internal/metrics"
	"github.com/local/decknotes/internal/render"
)

// TextSource yields per-page slide text. Satisfied by extract.Extractor.
type TextSource interface {
	PageCount() int
	PageText(page int) (string, error)
}

// NoteGenerator produces normalized annotation text for one slide.
// Satisfied by annotate.Generator.
type NoteGenerator interface {
	Generate(ctx context.Context, courseName, slideText string, page int) (string, error)
}

// PageComposer builds one output page file. Satisfied by compose.Compositor.
type PageComposer interface {
	ComposePage(page int, fragment []byte, layout compose.Layout) (string, error)
}

// Sink accumulates composed pages and persists the final document.
// Satisfied by assemble.Assembler.
type Sink interface {
	Append(pagePath string)
	Save() error
}

// Dependencies wires the pipeline. Everything is injected so tests can
// substitute fakes for the remote generator and the external renderer.
type Dependencies struct {
	Extractor TextSource
	Generator NoteGenerator
	Renderer  render.Renderer
	Cache     *cache.Store
	Composer  PageComposer
	Sink      Sink
	// PageDims returns the source page size (width, height) in page units.
	PageDims func(page int) (float64, float64, error)
}

// Options describe one annotation run.
type Options struct {
	CourseName  string
	DocPath     string
	Side        string
	MarginRatio float64
	Selection   []int // nil means all pages
	Force       bool
}

// Run processes the selected pages sequentially. Any failure aborts the run
// before the output document is written; annotation records cached for
// completed pages survive for the next attempt.
func Run(ctx context.Context, deps Dependencies, opts Options) error {
	pages := opts.Selection
	if pages == nil {
		total := deps.Extractor.PageCount()
		pages = make([]int, 0, total)
		for i := 1; i <= total; i++ {
			pages = append(pages, i)
		}
	}

	start := time.Now()
	var hits int
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		srcW, srcH, err := deps.PageDims(page)
		if err != nil {
			return fmt.Errorf("page %d dimensions: %w", page, err)
		}
		layout, err := compose.Compute(opts.Side, srcW, srcH, opts.MarginRatio)
		if err != nil {
			return err
		}

		key := cache.NewKey(opts.CourseName, opts.DocPath, page)
		note, hit, err := deps.Cache.Lookup(key, opts.Force)
		if err != nil {
			return err
		}
		metrics.IncCacheLookup(hit)
		if hit {
			hits++
		}

		if !hit {
			text, err := deps.Extractor.PageText(page)
			if err != nil {
				return err
			}
			note, err = deps.Generator.Generate(ctx, opts.CourseName, text, page)
			if err != nil {
				return err
			}
			if err := deps.Cache.WriteNote(key, note); err != nil {
				return err
			}
		}

		// The fragment is rendered on every run, cache hit or not: it is
		// sized to this run's notes rectangle.
		fragment, err := deps.Renderer.Render(ctx, note, layout.Notes.W, layout.Notes.H)
		if err != nil {
			return err
		}
		if err := deps.Cache.WriteFragment(key, fragment); err != nil {
			return err
		}

		pagePath, err := deps.Composer.ComposePage(page, fragment, layout)
		if err != nil {
			return err
		}
		deps.Sink.Append(pagePath)
		metrics.IncPageProcessed()
		log.Info().Int("page", page).Bool("cache_hit", hit).Msg("page annotated")
	}

	if err := deps.Sink.Save(); err != nil {
		return err
	}
	log.Info().
		Int("pages", len(pages)).
		Int("cache_hits", hits).
		Int("generated", len(pages)-hits).
		Dur("duration", time.Since(start)).
		Msg("run summary")
	return nil
}
