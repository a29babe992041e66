package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"
)

// Compositor builds one output page at a time: a blank canvas of the new
// page size with the original slide page and the rendered fragment stamped
// at their layout rectangles. Intermediate files live in a per-run scratch
// directory owned by the caller.
type Compositor struct {
	srcPath string
	scratch string
	conf    *model.Configuration
}

func NewCompositor(srcPath, scratchDir string) *Compositor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Compositor{srcPath: srcPath, scratch: scratchDir, conf: conf}
}

// ComposePage produces a single-page PDF for source page n (1-based) with
// the fragment placed in the notes rectangle, and returns its path.
func (c *Compositor) ComposePage(page int, fragment []byte, layout Layout) (string, error) {
	tag := fmt.Sprintf("page_%03d", page)

	// Pull the original page out of the source document.
	slidePath := filepath.Join(c.scratch, tag+"_slide.pdf")
	if err := api.TrimFile(c.srcPath, slidePath, []string{strconv.Itoa(page)}, c.conf); err != nil {
		return "", fmt.Errorf("extract source page %d: %w", page, err)
	}

	fragPath := filepath.Join(c.scratch, tag+"_note.pdf")
	if err := os.WriteFile(fragPath, fragment, 0o644); err != nil {
		return "", fmt.Errorf("write fragment: %w", err)
	}

	canvasPath, err := c.blankCanvas(tag, layout.Page)
	if err != nil {
		return "", err
	}

	// Stamp the slide, then the fragment, each at absolute scale so neither
	// gets resized away from its layout rectangle.
	outPath := filepath.Join(c.scratch, tag+"_composed.pdf")
	if err := c.stamp(canvasPath, outPath, slidePath, layout.Slide); err != nil {
		return "", fmt.Errorf("place slide on page %d: %w", page, err)
	}
	if err := c.stamp(outPath, outPath, fragPath, layout.Notes); err != nil {
		return "", fmt.Errorf("place notes fragment on page %d: %w", page, err)
	}

	log.Debug().Int("page", page).Str("file", filepath.Base(outPath)).Msg("composed output page")
	return outPath, nil
}

// blankCanvas creates an empty single-page PDF with the output page's media box.
func (c *Compositor) blankCanvas(tag string, page Rect) (string, error) {
	jsonPath := filepath.Join(c.scratch, tag+"_canvas.json")
	decl := fmt.Sprintf(`{"pages": {"1": {"mediaBox": [0, 0, %.2f, %.2f]}}}`, page.W, page.H)
	if err := os.WriteFile(jsonPath, []byte(decl), 0o644); err != nil {
		return "", fmt.Errorf("write canvas declaration: %w", err)
	}
	canvasPath := filepath.Join(c.scratch, tag+"_canvas.pdf")
	if err := api.CreateFromJSONFile(jsonPath, "", canvasPath, c.conf); err != nil {
		return "", fmt.Errorf("create canvas %gx%g: %w", page.W, page.H, err)
	}
	return canvasPath, nil
}

// stamp places page 1 of stampPath onto inPath at the given rectangle,
// anchored bottom-left, without rescaling.
func (c *Compositor) stamp(inPath, outPath, stampPath string, r Rect) error {
	desc := fmt.Sprintf("pos:bl, off:%.2f %.2f, scale:1 abs, rot:0", r.X, r.Y)
	wm, err := api.PDFWatermark(stampPath+":1", desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("build stamp for %s: %w", filepath.Base(stampPath), err)
	}
	if err := api.AddWatermarksFile(inPath, outPath, nil, wm, c.conf); err != nil {
		return fmt.Errorf("apply stamp %s: %w", filepath.Base(stampPath), err)
	}
	return nil
}
