package layout

import "math"

// Resize sets the width and height of widget id and redistributes the widths
// of its visible row-mates so the row still sums to 100.
//
// A widget alone in its row always fills it. With one row-mate, the two
// widths are complementary. With several, row-mates share the remainder in
// proportion to their current widths; any row-mate that would fall under
// MinWidthPercent is held at the floor and the shortfall comes out of the
// others. The requested width is capped so every row-mate can keep its
// minimum; a NaN width keeps the current one. Unknown or hidden ids leave
// the list unchanged.
func Resize(layouts []WidgetLayout, visible Set, id string, widthPercent float64, heightPx int) []WidgetLayout {
	p := newPlan(layouts, visible)
	row, pos, ok := p.locate(id)
	if !ok {
		return p.layouts
	}
	idx := p.rows[row][pos]
	target := &p.layouts[idx]
	target.HeightPx = ClampHeight(heightPx)

	siblings := len(p.rows[row]) - 1
	if siblings == 0 {
		target.WidthPercent = MaxWidthPercent
		return p.layouts
	}

	if math.IsNaN(widthPercent) {
		widthPercent = target.WidthPercent
	}
	w := ClampWidth(widthPercent)
	if limit := maxWidthBeside(siblings); w > limit {
		w = limit
	}
	target.WidthPercent = w

	if siblings == 1 {
		other := p.rows[row][1-pos]
		p.layouts[other].WidthPercent = MaxWidthPercent - w
		return p.layouts
	}
	p.refit(row, idx)
	return p.layouts
}

// ResizeWidth changes only the width of id, keeping its height.
func ResizeWidth(layouts []WidgetLayout, visible Set, id string, widthPercent float64) []WidgetLayout {
	i := indexOf(layouts, id)
	if i < 0 {
		return cloneLayouts(layouts)
	}
	return Resize(layouts, visible, id, widthPercent, layouts[i].HeightPx)
}

// ResizeHeight changes only the height of id. Row-mates are untouched.
func ResizeHeight(layouts []WidgetLayout, visible Set, id string, heightPx int) []WidgetLayout {
	out := cloneLayouts(layouts)
	i := indexOf(out, id)
	if i < 0 || !visible.Has(id) {
		return out
	}
	out[i].HeightPx = ClampHeight(heightPx)
	return out
}
