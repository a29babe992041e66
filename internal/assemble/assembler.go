package assemble

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
)

// Assembler accumulates composed page files in traversal order and persists
// them as one output document. Nothing is written until Save, so a failed
// run never leaves a partial output behind.
type Assembler struct {
	outPath string
	pages   []string
	conf    *model.Configuration
}

func New(outPath string) *Assembler {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Assembler{outPath: outPath, conf: conf}
}

// Append records the next composed page. Call order defines page order.
func (a *Assembler) Append(pagePath string) {
	a.pages = append(a.pages, pagePath)
}

// Len returns the number of pages appended so far.
func (a *Assembler) Len() int { return len(a.pages) }

// Save merges the accumulated pages into the output document and optimizes
// it, compressing content streams and reclaiming dead objects.
func (a *Assembler) Save() error {
	if len(a.pages) == 0 {
		return fmt.Errorf("no pages to save")
	}
	if dir := filepath.Dir(a.outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := api.MergeCreateFile(a.pages, a.outPath, false, a.conf); err != nil {
		return fmt.Errorf("merge output document: %w", err)
	}
	if err := api.OptimizeFile(a.outPath, "", a.conf); err != nil {
		return fmt.Errorf("optimize output document: %w", err)
	}
	log.Info().Str("output", a.outPath).Int("pages", len(a.pages)).Msg("saved output document")
	return nil
}
