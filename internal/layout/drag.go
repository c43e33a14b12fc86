package layout

import (
	"strconv"
	"strings"
)

const rowGapPrefix = "row-gap-"

// RowGapID returns the drop target id for the gap above visual row n.
// Gap 0 is above the first row; gap K (K rows) is below the last.
func RowGapID(n int) string {
	return rowGapPrefix + strconv.Itoa(n)
}

// ParseRowGap extracts the gap index from a row-gap drop target id.
func ParseRowGap(id string) (int, bool) {
	if !strings.HasPrefix(id, rowGapPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(rowGapPrefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Drop applies the end of a drag of activeID onto overID, which is either
// another widget or a row gap. Self-drops, empty targets and ids that do not
// resolve to a visible layout leave the list unchanged.
func Drop(layouts []WidgetLayout, visible Set, activeID, overID string) []WidgetLayout {
	if activeID == "" || overID == "" || activeID == overID {
		return cloneLayouts(layouts)
	}
	if gap, ok := ParseRowGap(overID); ok {
		return DropOnGap(layouts, visible, activeID, gap)
	}
	return DropOnWidget(layouts, visible, activeID, overID)
}

// DropOnGap moves activeID into a new row of its own at visual gap index
// gap. The row it left is rescaled back to 100.
func DropOnGap(layouts []WidgetLayout, visible Set, activeID string, gap int) []WidgetLayout {
	p := newPlan(layouts, visible)
	row, pos, ok := p.locate(activeID)
	if !ok {
		return p.layouts
	}
	if gap > len(p.rows) {
		gap = len(p.rows)
	}
	if gap <= row {
		row++
	}
	p.insertRow(gap)
	idx := p.removeAt(row, pos)
	p.refit(row)

	p.rows[gap] = []int{idx}
	p.layouts[idx].WidthPercent = MaxWidthPercent
	return p.commit()
}

// DropOnWidget handles a drag of activeID onto overID.
//
// Within one row the two widgets trade places. Across rows the dragged
// widget joins the target's row right after the target with an equal share
// of the row (100/(n+1)); the existing members shrink proportionally to make
// room and the row it left is rescaled back to 100. A drop onto a row that
// already holds MaxRowWidgets widgets is ignored.
func DropOnWidget(layouts []WidgetLayout, visible Set, activeID, overID string) []WidgetLayout {
	p := newPlan(layouts, visible)
	fromRow, fromPos, ok := p.locate(activeID)
	if !ok {
		return p.layouts
	}
	toRow, toPos, ok := p.locate(overID)
	if !ok || activeID == overID {
		return p.layouts
	}

	if fromRow == toRow {
		members := p.rows[fromRow]
		members[fromPos], members[toPos] = members[toPos], members[fromPos]
		return p.commit()
	}

	n := len(p.rows[toRow])
	if n+1 > MaxRowWidgets {
		return p.layouts
	}

	idx := p.removeAt(fromRow, fromPos)
	p.refit(fromRow)

	p.layouts[idx].WidthPercent = MaxWidthPercent / float64(n+1)
	p.insertAt(toRow, toPos+1, idx)
	p.refit(toRow, idx)
	return p.commit()
}
