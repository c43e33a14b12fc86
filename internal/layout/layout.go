// Package layout arranges dashboard widgets into rows.
//
// Every function here is pure: it takes the current layout list and visibility
// set and returns a new list, leaving its inputs untouched. Callers own
// persistence and decide which results are committed.
package layout

import "math"

// Size bounds for a single widget.
const (
	MinWidthPercent = 15.0
	MaxWidthPercent = 100.0
	MinHeightPx     = 150
	MaxHeightPx     = 800
	DefaultHeightPx = 300

	// MaxRowWidgets is the most widgets a row can hold while every member
	// stays at or above MinWidthPercent.
	MaxRowWidgets = 6 // floor(MaxWidthPercent / MinWidthPercent)
)

// WidgetLayout is the stored position and size of one widget.
type WidgetLayout struct {
	ID           string  `json:"id" bson:"id"`
	Row          int     `json:"row" bson:"row"`
	Order        int     `json:"order" bson:"order"`
	WidthPercent float64 `json:"widthPercent" bson:"widthPercent"`
	HeightPx     int     `json:"heightPx" bson:"heightPx"`
}

// Widget is a catalog entry supplied by the host.
type Widget struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Icon           string  `json:"icon,omitempty"`
	DefaultVisible bool    `json:"defaultVisible"`
	WidthPercent   float64 `json:"widthPercent,omitempty"`
	HeightPx       int     `json:"heightPx,omitempty"`
}

// Catalog is the ordered list of known widgets.
type Catalog []Widget

// Get returns the catalog entry for id.
func (c Catalog) Get(id string) (Widget, bool) {
	for _, w := range c {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// Has reports whether id is a known widget.
func (c Catalog) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// Set is a set of visible widget ids.
type Set map[string]struct{}

// NewSet builds a Set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// State is the full persisted arrangement: which widgets are shown and where
// every widget (shown or not) was last placed.
type State struct {
	Visible []string       `json:"visible"`
	Layouts []WidgetLayout `json:"layouts"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	return State{
		Visible: append([]string(nil), s.Visible...),
		Layouts: cloneLayouts(s.Layouts),
	}
}

// VisibleSet returns the visibility set of s.
func (s State) VisibleSet() Set {
	return NewSet(s.Visible...)
}

// ClampWidth limits w to [MinWidthPercent, MaxWidthPercent]. NaN becomes
// MaxWidthPercent.
func ClampWidth(w float64) float64 {
	if math.IsNaN(w) {
		return MaxWidthPercent
	}
	if w < MinWidthPercent {
		return MinWidthPercent
	}
	if w > MaxWidthPercent {
		return MaxWidthPercent
	}
	return w
}

// ClampHeight limits h to [MinHeightPx, MaxHeightPx].
func ClampHeight(h int) int {
	if h < MinHeightPx {
		return MinHeightPx
	}
	if h > MaxHeightPx {
		return MaxHeightPx
	}
	return h
}

func cloneLayouts(layouts []WidgetLayout) []WidgetLayout {
	if layouts == nil {
		return nil
	}
	out := make([]WidgetLayout, len(layouts))
	copy(out, layouts)
	return out
}

func indexOf(layouts []WidgetLayout, id string) int {
	for i := range layouts {
		if layouts[i].ID == id {
			return i
		}
	}
	return -1
}
