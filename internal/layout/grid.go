package layout

// widthEpsilon absorbs floating point drift when deciding whether a widget
// still fits on the current row.
const widthEpsilon = 1e-6

// Grid flows widgets left to right into rows of GridWidth percent.
type Grid struct {
	GridWidth float64
	cursorX   float64
	cursorY   int
	row       int
	rowCount  int
	rowHeight int
}

// Slot is where Grid put a widget.
type Slot struct {
	Row   int
	Order int
	X     float64
	Y     int
}

// NewGrid creates a grid one full row (100%) wide.
func NewGrid() *Grid {
	return &Grid{GridWidth: MaxWidthPercent}
}

// Reset clears the cursor for a new arrangement.
func (g *Grid) Reset() {
	g.cursorX = 0
	g.cursorY = 0
	g.row = 0
	g.rowCount = 0
	g.rowHeight = 0
}

// Place positions a widget, wrapping to a new row when it would overflow
// the current one or the row is already full.
func (g *Grid) Place(width float64, height int) Slot {
	if g.rowCount > 0 && (g.cursorX+width > g.GridWidth+widthEpsilon || g.rowCount >= MaxRowWidgets) {
		g.FinishRow()
	}
	s := Slot{Row: g.row, Order: g.rowCount, X: g.cursorX, Y: g.cursorY}
	g.cursorX += width
	g.rowCount++
	if height > g.rowHeight {
		g.rowHeight = height
	}
	return s
}

// FinishRow advances past the tallest widget in the current row.
func (g *Grid) FinishRow() {
	if g.rowCount == 0 {
		return
	}
	g.cursorY += g.rowHeight
	g.cursorX = 0
	g.row++
	g.rowCount = 0
	g.rowHeight = 0
}

// Rect is the rendered box of one widget: X and Width in percent of the
// dashboard width, Y and Height in pixels.
type Rect struct {
	ID     string  `json:"id"`
	Row    int     `json:"row"`
	X      float64 `json:"x"`
	Y      int     `json:"y"`
	Width  float64 `json:"width"`
	Height int     `json:"height"`
}

// Frame is the placed form of a grouped layout.
type Frame struct {
	Rects  []Rect `json:"rects"`
	Height int    `json:"height"`
}

// Place turns grouped rows into rectangles. Each row starts below the
// tallest widget of the row above.
func Place(rows []Row) Frame {
	g := NewGrid()
	var f Frame
	for _, r := range rows {
		for _, w := range r.Widgets {
			s := g.Place(w.WidthPercent, w.HeightPx)
			f.Rects = append(f.Rects, Rect{
				ID:     w.ID,
				Row:    s.Row,
				X:      s.X,
				Y:      s.Y,
				Width:  w.WidthPercent,
				Height: w.HeightPx,
			})
		}
		g.FinishRow()
	}
	f.Height = g.cursorY
	return f
}

// Defaults builds the first-run arrangement from the default-visible
// widgets of catalog, in catalog order. Widgets flow into rows by their
// preferred width and each row is then stretched or shrunk to fill 100%.
func Defaults(catalog Catalog) State {
	g := NewGrid()
	var s State
	for _, w := range catalog {
		if !w.DefaultVisible {
			continue
		}
		width := MaxWidthPercent
		if w.WidthPercent > 0 {
			width = ClampWidth(w.WidthPercent)
		}
		height := DefaultHeightPx
		if w.HeightPx > 0 {
			height = ClampHeight(w.HeightPx)
		}
		slot := g.Place(width, height)
		s.Visible = append(s.Visible, w.ID)
		s.Layouts = append(s.Layouts, WidgetLayout{
			ID:           w.ID,
			Row:          slot.Row,
			Order:        slot.Order,
			WidthPercent: width,
			HeightPx:     height,
		})
	}
	p := newPlan(s.Layouts, s.VisibleSet())
	for r := range p.rows {
		p.refit(r)
	}
	s.Layouts = p.commit()
	return s
}
