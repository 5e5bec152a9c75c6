package layout

import (
	"sort"

	"github.com/tsawler/carta/model"
)

// gap represents a recurring vertical whitespace gap between text regions,
// in normalized X coordinates
type gap struct {
	left  float64
	right float64
}

// width returns the width of the gap
func (g gap) width() float64 {
	return g.right - g.left
}

// histogramBins is the horizontal resolution of the gap histogram
const histogramBins = 200

// findColumnGaps builds a horizontal-coverage histogram across the detected
// rows and returns the whitespace gaps that recur through the document. A
// candidate gap must be wider than minGapWidth (a fraction of image width)
// and crossed by at most maxCrossingRatio of the rows; gaps touching the
// left or right text margin are layout indentation, not column separators.
func findColumnGaps(rows [][]model.TextFragment, minGapWidth, maxCrossingRatio float64) []gap {
	if len(rows) < 2 {
		return nil
	}

	docBox := model.BBox{}
	first := true
	for _, row := range rows {
		box := model.FragmentsBBox(row)
		if first {
			docBox = box
			first = false
		} else {
			docBox = docBox.Union(box)
		}
	}
	if docBox.Width <= 0 {
		return nil
	}

	binWidth := docBox.Width / histogramBins

	// Count how many rows cover each horizontal bin
	coverage := make([]int, histogramBins)
	for _, row := range rows {
		covered := make([]bool, histogramBins)
		for _, f := range row {
			lo := int((f.BBox.Left() - docBox.X) / binWidth)
			hi := int((f.BBox.Right() - docBox.X) / binWidth)
			if lo < 0 {
				lo = 0
			}
			if hi >= histogramBins {
				hi = histogramBins - 1
			}
			for b := lo; b <= hi; b++ {
				covered[b] = true
			}
		}
		for b, c := range covered {
			if c {
				coverage[b]++
			}
		}
	}

	maxCrossing := int(maxCrossingRatio * float64(len(rows)))

	// Collect maximal runs of open bins wide enough to be column gaps.
	// Runs touching either margin are ignored.
	var gaps []gap
	runStart := -1
	for b := 0; b <= histogramBins; b++ {
		open := b < histogramBins && coverage[b] <= maxCrossing
		if open && runStart < 0 {
			runStart = b
		}
		if !open && runStart >= 0 {
			if runStart > 0 && b < histogramBins {
				g := gap{
					left:  docBox.X + float64(runStart)*binWidth,
					right: docBox.X + float64(b)*binWidth,
				}
				if g.width() >= minGapWidth {
					gaps = append(gaps, g)
				}
			}
			runStart = -1
		}
	}

	return gaps
}

// splitByColumns partitions fragments into columns using the detected gaps.
// Fragments are assigned by horizontal center; a fragment fully spanning a
// gap makes the layout ambiguous and the caller degrades to single-column
// mode, as does a column containing no text.
func splitByColumns(fragments []model.TextFragment, gaps []gap) ([][]model.TextFragment, bool) {
	boundaries := make([]float64, 0, len(gaps))
	for _, g := range gaps {
		boundaries = append(boundaries, (g.left+g.right)/2)
	}
	sort.Float64s(boundaries)

	columns := make([][]model.TextFragment, len(boundaries)+1)

	for _, f := range fragments {
		for _, g := range gaps {
			if f.BBox.Left() < g.left && f.BBox.Right() > g.right {
				return nil, false
			}
		}

		idx := sort.SearchFloat64s(boundaries, f.BBox.Center().X)
		columns[idx] = append(columns[idx], f)
	}

	for _, col := range columns {
		if len(col) == 0 {
			return nil, false
		}
	}

	return columns, true
}
