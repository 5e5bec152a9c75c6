package layout

import (
	"sort"
	"strings"

	"github.com/tsawler/carta/model"
)

// LineGroup represents a single visual row of menu text: the OCR fragments
// that share a baseline, merged into reading order.
type LineGroup struct {
	// Fragments are the text fragments in this row (sorted left to right)
	Fragments []model.TextFragment

	// BBox is the bounding box of the row
	BBox model.BBox

	// JoinedText is the assembled text content of the row
	JoinedText string

	// ColumnIndex is the index of the column this row belongs to
	// (0-based, left to right; always 0 in single-column mode)
	ColumnIndex int

	// VerticalPosition is the normalized Y of the row's center (0 = top)
	VerticalPosition float64

	// Confidence is the mean OCR confidence of the row's fragments (0-1)
	Confidence float64

	// Index is the row's position in reading order (0-based)
	Index int
}

// WordCount returns the number of whitespace-separated words in the row
func (g *LineGroup) WordCount() int {
	return len(strings.Fields(g.JoinedText))
}

// groupIntoLines groups fragments into horizontal rows based on vertical
// center distance. Two fragments belong to the same row when their vertical
// centers are closer than tolerance.
func groupIntoLines(fragments []model.TextFragment, tolerance float64) [][]model.TextFragment {
	if len(fragments) == 0 {
		return nil
	}

	// Sort fragments by vertical center, preserving OCR stream order for
	// fragments on the same row. X sorting happens per-row afterwards.
	sorted := make([]model.TextFragment, len(fragments))
	copy(sorted, fragments)
	sort.SliceStable(sorted, func(i, j int) bool {
		yDiff := sorted[i].BBox.Center().Y - sorted[j].BBox.Center().Y
		if absFloat64(yDiff) > tolerance {
			return yDiff < 0 // Smaller Y first (top of image)
		}
		return false
	})

	var rows [][]model.TextFragment
	var currentRow []model.TextFragment

	for _, frag := range sorted {
		if len(currentRow) == 0 {
			currentRow = append(currentRow, frag)
			continue
		}

		// Compare against the average center of the row built so far,
		// which tolerates slightly wavy baselines in photographed menus
		avgY := averageCenterY(currentRow)

		if absFloat64(frag.BBox.Center().Y-avgY) <= tolerance {
			currentRow = append(currentRow, frag)
		} else {
			rows = append(rows, sortRowByX(currentRow))
			currentRow = []model.TextFragment{frag}
		}
	}

	if len(currentRow) > 0 {
		rows = append(rows, sortRowByX(currentRow))
	}

	return rows
}

// sortRowByX sorts a row's fragments left to right. Ties fall back to the
// OCR stream order via the stable sort.
func sortRowByX(row []model.TextFragment) []model.TextFragment {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].BBox.X < row[j].BBox.X
	})
	return row
}

// buildLineGroups creates LineGroup values from grouped fragment rows
func buildLineGroups(rows [][]model.TextFragment, columnIndex int) []LineGroup {
	groups := make([]LineGroup, 0, len(rows))

	for _, fragments := range rows {
		if len(fragments) == 0 {
			continue
		}

		bbox := model.FragmentsBBox(fragments)

		group := LineGroup{
			Fragments:        fragments,
			BBox:             bbox,
			JoinedText:       assembleRowText(fragments),
			ColumnIndex:      columnIndex,
			VerticalPosition: bbox.Center().Y,
			Confidence:       averageConfidence(fragments),
		}

		if strings.TrimSpace(group.JoinedText) == "" {
			continue
		}

		groups = append(groups, group)
	}

	return groups
}

// assembleRowText joins fragment texts left to right with single spaces,
// collapsing whitespace the OCR engine may have left inside fragments.
func assembleRowText(fragments []model.TextFragment) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		trimmed := strings.Join(strings.Fields(f.Text), " ")
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// averageCenterY returns the average vertical center of a row's fragments
func averageCenterY(fragments []model.TextFragment) float64 {
	if len(fragments) == 0 {
		return 0
	}
	total := 0.0
	for _, f := range fragments {
		total += f.BBox.Center().Y
	}
	return total / float64(len(fragments))
}

// averageConfidence returns the mean OCR confidence of a set of fragments
func averageConfidence(fragments []model.TextFragment) float64 {
	if len(fragments) == 0 {
		return 0
	}
	total := 0.0
	for _, f := range fragments {
		total += f.Confidence
	}
	return model.ClampConfidence(total / float64(len(fragments)))
}

// medianFragmentHeight returns the median bounding-box height of fragments
func medianFragmentHeight(fragments []model.TextFragment) float64 {
	if len(fragments) == 0 {
		return 0
	}
	heights := make([]float64, len(fragments))
	for i, f := range fragments {
		heights[i] = f.BBox.Height
	}
	sort.Float64s(heights)
	mid := len(heights) / 2
	if len(heights)%2 == 0 {
		return (heights[mid-1] + heights[mid]) / 2
	}
	return heights[mid]
}

func absFloat64(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
