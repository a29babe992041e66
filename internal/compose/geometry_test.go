package compose

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeRightSide(t *testing.T) {
	l, err := Compute(SideRight, 612, 792, 1.0)
	require.NoError(t, err)
	require.Equal(t, Rect{0, 0, 1224, 792}, l.Page)
	require.Equal(t, Rect{0, 0, 612, 792}, l.Slide)
	require.Equal(t, Rect{612, 0, 612, 792}, l.Notes)
}

func TestComputeLeftSide(t *testing.T) {
	l, err := Compute(SideLeft, 612, 792, 0.5)
	require.NoError(t, err)
	require.Equal(t, Rect{0, 0, 918, 792}, l.Page)
	require.Equal(t, Rect{306, 0, 612, 792}, l.Slide)
	require.Equal(t, Rect{0, 0, 306, 792}, l.Notes)
}

func TestComputeTilingInvariant(t *testing.T) {
	sizes := []struct{ w, h float64 }{{612, 792}, {960, 540}, {841.89, 595.28}}
	ratios := []float64{0.25, 0.5, 1.0, 1.75}
	for _, side := range []string{SideRight, SideLeft} {
		for _, sz := range sizes {
			for _, ratio := range ratios {
				l, err := Compute(side, sz.w, sz.h, ratio)
				require.NoError(t, err)

				// Full height on both regions.
				require.Equal(t, l.Page.H, l.Slide.H)
				require.Equal(t, l.Page.H, l.Notes.H)

				// Disjoint: one ends where the other begins.
				left, right := l.Slide, l.Notes
				if right.X < left.X {
					left, right = right, left
				}
				require.InDelta(t, left.X+left.W, right.X, 1e-9)

				// Union equals the page rectangle.
				require.InDelta(t, 0, left.X, 1e-9)
				require.InDelta(t, l.Page.W, right.X+right.W, 1e-9)
				require.InDelta(t, sz.w*(1+ratio), l.Page.W, 1e-9)
				require.True(t, math.Abs(l.Notes.W-sz.w*ratio) < 1e-9)
			}
		}
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	_, err := Compute(SideRight, 612, 792, 0)
	require.Error(t, err)
	_, err = Compute(SideRight, 612, 792, -1)
	require.Error(t, err)
	_, err = Compute("top", 612, 792, 1)
	require.Error(t, err)
	_, err = Compute(SideRight, 0, 792, 1)
	require.Error(t, err)
}
