package layout

// Sanitize validates a stored arrangement against catalog. It reports false
// when the state names a widget the catalog does not know, in which case
// the caller should fall back to Defaults. Otherwise it returns a repaired
// copy: duplicate ids dropped, sizes clamped, missing layouts created for
// visible ids, overfull rows split and every row fitted to 100.
func Sanitize(s State, catalog Catalog) (State, bool) {
	known := func(id string) bool { return len(catalog) == 0 || catalog.Has(id) }

	var out State
	seen := make(map[string]bool)
	for _, id := range s.Visible {
		if id == "" || !known(id) {
			return State{}, false
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out.Visible = append(out.Visible, id)
	}

	seen = make(map[string]bool)
	for _, l := range s.Layouts {
		if l.ID == "" || !known(l.ID) {
			return State{}, false
		}
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		l.WidthPercent = ClampWidth(l.WidthPercent)
		l.HeightPx = ClampHeight(l.HeightPx)
		out.Layouts = append(out.Layouts, l)
	}

	p := newPlan(out.Layouts, out.VisibleSet())
	for _, id := range out.Visible {
		if indexOf(p.layouts, id) < 0 {
			p.layouts = append(p.layouts, newLayout(id, catalog))
			p.rows = append(p.rows, []int{len(p.layouts) - 1})
		}
	}

	var rows [][]int
	for _, members := range p.rows {
		for len(members) > MaxRowWidgets {
			rows = append(rows, members[:MaxRowWidgets])
			members = members[MaxRowWidgets:]
		}
		rows = append(rows, members)
	}
	p.rows = rows
	for r := range p.rows {
		p.refit(r)
	}
	out.Layouts = p.commit()
	return out, true
}
