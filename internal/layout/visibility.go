package layout

// Toggle shows or hides widget id. It is a convenience over Show and Hide.
func Toggle(s State, id string, show bool, catalog Catalog) State {
	if show {
		return Show(s, id, catalog)
	}
	return Hide(s, id)
}

// Flip inverts the visibility of id.
func Flip(s State, id string, catalog Catalog) State {
	return Toggle(s, id, !s.VisibleSet().Has(id), catalog)
}

// Hide removes id from the visible set. Its stored layout is kept as-is so a
// later Show restores it; the widgets left behind in its row are rescaled to
// fill the row again.
func Hide(s State, id string) State {
	visible := s.VisibleSet()
	if !visible.Has(id) {
		return s.Clone()
	}
	p := newPlan(s.Layouts, visible)
	if row, pos, ok := p.locate(id); ok {
		p.removeAt(row, pos)
		p.refit(row)
	}
	return State{
		Visible: without(s.Visible, id),
		Layouts: p.commit(),
	}
}

// Show adds id to the visible set. A widget seen for the first time gets a
// fresh full-width layout in a new bottom row, created in the same step so
// no visible id is ever left without a layout. A widget with a stored layout
// goes back where it was: a full-width layout becomes its own row at its
// stored row index, a partial one rejoins its stored row at its stored order
// and its row-mates shrink to make room. Ids missing from a non-empty
// catalog are ignored.
func Show(s State, id string, catalog Catalog) State {
	visible := s.VisibleSet()
	if visible.Has(id) || id == "" {
		return s.Clone()
	}
	if len(catalog) > 0 && !catalog.Has(id) {
		return s.Clone()
	}

	p := newPlan(s.Layouts, visible)
	idx := indexOf(p.layouts, id)
	if idx < 0 {
		p.layouts = append(p.layouts, newLayout(id, catalog))
		idx = len(p.layouts) - 1
		p.rows = append(p.rows, []int{idx})
	} else {
		restore(p, idx)
	}

	return State{
		Visible: append(append([]string(nil), s.Visible...), id),
		Layouts: p.commit(),
	}
}

func restore(p *plan, idx int) {
	l := &p.layouts[idx]
	l.HeightPx = ClampHeight(l.HeightPx)
	row := l.Row

	joinable := row >= 0 && row < len(p.rows) &&
		l.WidthPercent < MaxWidthPercent &&
		len(p.rows[row]) < MaxRowWidgets
	if !joinable {
		l.WidthPercent = MaxWidthPercent
		p.insertRow(row, idx)
		return
	}

	l.WidthPercent = ClampWidth(l.WidthPercent)
	if limit := maxWidthBeside(len(p.rows[row])); l.WidthPercent > limit {
		l.WidthPercent = limit
	}
	pos := l.Order
	if pos < 0 {
		pos = 0
	}
	p.insertAt(row, pos, idx)
	p.refit(row, idx)
}

func newLayout(id string, catalog Catalog) WidgetLayout {
	height := DefaultHeightPx
	if w, ok := catalog.Get(id); ok && w.HeightPx > 0 {
		height = ClampHeight(w.HeightPx)
	}
	return WidgetLayout{
		ID:           id,
		WidthPercent: MaxWidthPercent,
		HeightPx:     height,
	}
}

// Reset returns the built-in arrangement for catalog.
func Reset(catalog Catalog) State {
	return Defaults(catalog)
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
