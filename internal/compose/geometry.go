package compose

import "fmt"

// Sides the notes column can occupy.
const (
	SideRight = "right"
	SideLeft  = "left"
)

// Rect is an axis-aligned rectangle in page units, origin bottom-left.
type Rect struct {
	X, Y, W, H float64
}

// Layout describes one output page: the full page rectangle, the region
// receiving the original slide and the notes rectangle receiving the
// rendered fragment. Slide and Notes are disjoint, span the full page
// height and tile Page exactly.
type Layout struct {
	Page  Rect
	Slide Rect
	Notes Rect
}

// Compute derives the output page layout for a source page of srcW x srcH.
// The notes column is marginRatio times the slide width; the new page keeps
// the source height and grows by the notes width.
func Compute(side string, srcW, srcH, marginRatio float64) (Layout, error) {
	if srcW <= 0 || srcH <= 0 {
		return Layout{}, fmt.Errorf("invalid source page size %gx%g", srcW, srcH)
	}
	if marginRatio <= 0 {
		return Layout{}, fmt.Errorf("margin ratio must be positive, got %g", marginRatio)
	}

	noteW := srcW * marginRatio
	newW := srcW + noteW
	page := Rect{X: 0, Y: 0, W: newW, H: srcH}

	switch side {
	case SideRight:
		return Layout{
			Page:  page,
			Slide: Rect{X: 0, Y: 0, W: srcW, H: srcH},
			Notes: Rect{X: srcW, Y: 0, W: noteW, H: srcH},
		}, nil
	case SideLeft:
		return Layout{
			Page:  page,
			Slide: Rect{X: noteW, Y: 0, W: srcW, H: srcH},
			Notes: Rect{X: 0, Y: 0, W: noteW, H: srcH},
		}, nil
	default:
		return Layout{}, fmt.Errorf("unknown side %q (want %q or %q)", side, SideRight, SideLeft)
	}
}
