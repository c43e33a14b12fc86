package layout

import "sort"

// Row is one horizontal band of visible widgets, sorted by order.
type Row struct {
	Index   int            `json:"row"`
	Widgets []WidgetLayout `json:"widgets"`
}

// Width returns the summed width of the row's widgets.
func (r Row) Width() float64 {
	var sum float64
	for _, w := range r.Widgets {
		sum += w.WidthPercent
	}
	return sum
}

// Height returns the tallest member's height.
func (r Row) Height() int {
	h := 0
	for _, w := range r.Widgets {
		if w.HeightPx > h {
			h = w.HeightPx
		}
	}
	return h
}

// GroupByRow returns the visible layouts grouped by row number, rows in
// ascending order and widgets within a row in ascending order. Ties keep the
// order of the input list. Visible ids without a layout are skipped.
func GroupByRow(layouts []WidgetLayout, visible Set) []Row {
	groups := groupIndices(layouts, visible)
	rows := make([]Row, 0, len(groups))
	for _, g := range groups {
		r := Row{Index: layouts[g[0]].Row, Widgets: make([]WidgetLayout, len(g))}
		for i, idx := range g {
			r.Widgets[i] = layouts[idx]
		}
		rows = append(rows, r)
	}
	return rows
}

func groupIndices(layouts []WidgetLayout, visible Set) [][]int {
	byRow := make(map[int][]int)
	for i, l := range layouts {
		if !visible.Has(l.ID) {
			continue
		}
		byRow[l.Row] = append(byRow[l.Row], i)
	}
	keys := make([]int, 0, len(byRow))
	for k := range byRow {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	groups := make([][]int, 0, len(keys))
	for _, k := range keys {
		g := byRow[k]
		sort.SliceStable(g, func(a, b int) bool {
			return layouts[g[a]].Order < layouts[g[b]].Order
		})
		groups = append(groups, g)
	}
	return groups
}

// plan is a working copy of a layout list with its visible rows held as
// explicit slices of indices. Moves are splices on those slices; commit
// writes dense row and order numbers back.
type plan struct {
	layouts []WidgetLayout
	rows    [][]int
}

func newPlan(layouts []WidgetLayout, visible Set) *plan {
	cp := cloneLayouts(layouts)
	return &plan{layouts: cp, rows: groupIndices(cp, visible)}
}

// locate returns the row and position of id among visible rows.
func (p *plan) locate(id string) (row, pos int, ok bool) {
	for r, members := range p.rows {
		for i, idx := range members {
			if p.layouts[idx].ID == id {
				return r, i, true
			}
		}
	}
	return 0, 0, false
}

func (p *plan) removeAt(row, pos int) int {
	members := p.rows[row]
	idx := members[pos]
	p.rows[row] = append(members[:pos:pos], members[pos+1:]...)
	return idx
}

func (p *plan) insertAt(row, pos, idx int) {
	members := p.rows[row]
	if pos > len(members) {
		pos = len(members)
	}
	out := make([]int, 0, len(members)+1)
	out = append(out, members[:pos]...)
	out = append(out, idx)
	out = append(out, members[pos:]...)
	p.rows[row] = out
}

func (p *plan) insertRow(at int, members ...int) {
	if at < 0 {
		at = 0
	}
	if at > len(p.rows) {
		at = len(p.rows)
	}
	p.rows = append(p.rows, nil)
	copy(p.rows[at+1:], p.rows[at:])
	p.rows[at] = members
}

// refit rescales the members of row, other than those listed in keep, so the
// whole row sums to 100.
func (p *plan) refit(row int, keep ...int) {
	if row < 0 || row >= len(p.rows) {
		return
	}
	total := MaxWidthPercent
	var free []int
	for _, idx := range p.rows[row] {
		if containsInt(keep, idx) {
			total -= p.layouts[idx].WidthPercent
			continue
		}
		free = append(free, idx)
	}
	if len(free) == 0 {
		return
	}
	widths := make([]float64, len(free))
	for i, idx := range free {
		widths[i] = p.layouts[idx].WidthPercent
	}
	for i, w := range fit(widths, total) {
		p.layouts[free[i]].WidthPercent = w
	}
}

// commit drops empty rows and renumbers rows 0..K-1 and orders 0..N-1.
func (p *plan) commit() []WidgetLayout {
	row := 0
	for _, members := range p.rows {
		if len(members) == 0 {
			continue
		}
		for order, idx := range members {
			p.layouts[idx].Row = row
			p.layouts[idx].Order = order
		}
		row++
	}
	return p.layouts
}

// Renormalize remaps the rows of visible widgets to a dense 0..K-1 sequence
// and their orders to 0..N-1 within each row, preserving relative order.
// Hidden layouts keep their stored values.
func Renormalize(layouts []WidgetLayout, visible Set) []WidgetLayout {
	return newPlan(layouts, visible).commit()
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
