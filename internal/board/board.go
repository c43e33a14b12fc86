// Package board holds the live arrangement for each scope and the gesture
// state around it. A drag or resize runs Idle -> in progress -> committed or
// cancelled; only commits change the canonical arrangement, and every commit
// is written to the store before the call returns.
package board

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/wcatz/dashboard-layout/internal/layout"
	"github.com/wcatz/dashboard-layout/internal/store"
)

var (
	// ErrNoGesture is returned when a gesture id does not match the gesture
	// in progress. Callers treat it as a no-op.
	ErrNoGesture = errors.New("no matching gesture in progress")

	// ErrNotVisible is returned when a gesture starts on a hidden or unknown widget.
	ErrNotVisible = errors.New("widget is not visible")
)

// Gesture kinds.
const (
	KindDrag   = "drag"
	KindResize = "resize"
)

// Gesture is an in-progress pointer interaction.
type Gesture struct {
	ID       string    `json:"gesture"`
	Kind     string    `json:"kind"`
	WidgetID string    `json:"id"`
	Started  time.Time `json:"started"`
}

// Board is the arrangement of one scope. All methods are safe for
// concurrent use; mutations never interleave.
type Board struct {
	mu      sync.Mutex
	scope   string
	store   store.Store
	catalog layout.Catalog
	logger  *log.Logger

	state  layout.State
	drag   *Gesture
	resize *Gesture
}

func newBoard(scope string, st store.Store, catalog layout.Catalog, state layout.State, logger *log.Logger) *Board {
	return &Board{
		scope:   scope,
		store:   st,
		catalog: catalog,
		logger:  logger,
		state:   state,
	}
}

// Scope returns the scope this board belongs to.
func (b *Board) Scope() string {
	return b.scope
}

// Snapshot returns a copy of the committed arrangement.
func (b *Board) Snapshot() layout.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Clone()
}

// Rows returns the visible widgets grouped into rows.
func (b *Board) Rows() []layout.Row {
	b.mu.Lock()
	defer b.mu.Unlock()
	return layout.GroupByRow(b.state.Layouts, b.state.VisibleSet())
}

// Frame returns the placed rectangles of the committed arrangement.
func (b *Board) Frame() layout.Frame {
	return layout.Place(b.Rows())
}

// Dragging returns the drag in progress, if any.
func (b *Board) Dragging() (Gesture, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.drag == nil {
		return Gesture{}, false
	}
	return *b.drag, true
}

// StartDrag begins dragging widget id. A drag already in progress is
// abandoned.
func (b *Board) StartDrag(id string) (Gesture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.VisibleSet().Has(id) {
		return Gesture{}, ErrNotVisible
	}
	if b.drag != nil {
		b.logger.Debug("abandoning drag", "scope", b.scope, "gesture", b.drag.ID, "widget", b.drag.WidgetID)
	}
	g := newGesture(KindDrag, id)
	b.drag = &g
	b.logger.Debug("drag started", "scope", b.scope, "gesture", g.ID, "widget", id)
	return g, nil
}

// EndDrag drops the dragged widget on overID, which is a widget id or a row
// gap id. An empty overID is a drop outside every target and changes nothing.
func (b *Board) EndDrag(ctx context.Context, gestureID, overID string) (layout.State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drag == nil || b.drag.ID != gestureID {
		b.logger.Debug("ignoring stale drag", "scope", b.scope, "gesture", gestureID)
		return b.state.Clone(), ErrNoGesture
	}
	active := b.drag.WidgetID
	b.drag = nil

	if overID == "" {
		b.logger.Debug("drag dropped outside targets", "scope", b.scope, "widget", active)
		return b.state.Clone(), nil
	}

	next := layout.Drop(b.state.Layouts, b.state.VisibleSet(), active, overID)
	if sameLayouts(next, b.state.Layouts) {
		b.logger.Debug("drop changed nothing", "scope", b.scope, "widget", active, "over", overID)
		return b.state.Clone(), nil
	}
	b.commit(ctx, layout.State{Visible: b.state.Visible, Layouts: next})
	b.logger.Info("widget moved", "scope", b.scope, "widget", active, "over", overID)
	return b.state.Clone(), nil
}

// CancelDrag abandons the drag without touching the arrangement.
func (b *Board) CancelDrag(gestureID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.drag == nil || b.drag.ID != gestureID {
		return ErrNoGesture
	}
	b.logger.Debug("drag cancelled", "scope", b.scope, "widget", b.drag.WidgetID)
	b.drag = nil
	return nil
}

// PreviewResize computes the rows that committing the same resize would
// produce. The committed arrangement is not changed. A nil width or height
// keeps the current value.
func (b *Board) PreviewResize(id string, width *float64, height *int) ([]layout.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	visible := b.state.VisibleSet()
	if !visible.Has(id) {
		return nil, ErrNotVisible
	}
	next := applyResize(b.state.Layouts, visible, id, width, height)
	if b.resize == nil || b.resize.WidgetID != id {
		g := newGesture(KindResize, id)
		b.resize = &g
	}
	return layout.GroupByRow(next, visible), nil
}

// CommitResize applies the resize to the committed arrangement and persists
// it. Any preview is discarded.
func (b *Board) CommitResize(ctx context.Context, id string, width *float64, height *int) (layout.State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resize = nil
	visible := b.state.VisibleSet()
	if !visible.Has(id) {
		return b.state.Clone(), ErrNotVisible
	}
	next := applyResize(b.state.Layouts, visible, id, width, height)
	if sameLayouts(next, b.state.Layouts) {
		b.logger.Debug("resize changed nothing", "scope", b.scope, "widget", id)
		return b.state.Clone(), nil
	}
	b.commit(ctx, layout.State{Visible: b.state.Visible, Layouts: next})
	b.logger.Info("widget resized", "scope", b.scope, "widget", id)
	return b.state.Clone(), nil
}

// CancelResize discards any resize preview.
func (b *Board) CancelResize() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resize = nil
}

// Resizing returns the resize gesture being previewed, if any.
func (b *Board) Resizing() (Gesture, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.resize == nil {
		return Gesture{}, false
	}
	return *b.resize, true
}

// Toggle shows or hides widget id.
func (b *Board) Toggle(ctx context.Context, id string, visible bool) layout.State {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := layout.Toggle(b.state, id, visible, b.catalog)
	if sameLayouts(next.Layouts, b.state.Layouts) && len(next.Visible) == len(b.state.Visible) {
		return b.state.Clone()
	}
	b.commit(ctx, next)
	b.logger.Info("widget visibility changed", "scope", b.scope, "widget", id, "visible", visible)
	return b.state.Clone()
}

// Reset replaces the arrangement with the defaults of catalog. A nil
// catalog uses the board's own.
func (b *Board) Reset(ctx context.Context, catalog layout.Catalog) layout.State {
	b.mu.Lock()
	defer b.mu.Unlock()

	if catalog == nil {
		catalog = b.catalog
	}
	b.drag = nil
	b.resize = nil
	b.commit(ctx, layout.Reset(catalog))
	b.logger.Info("layout reset", "scope", b.scope)
	return b.state.Clone()
}

// commit makes next canonical and persists it. A failed save is logged and
// the in-memory commit stands.
func (b *Board) commit(ctx context.Context, next layout.State) {
	b.state = next.Clone()
	if err := b.store.Save(ctx, b.scope, store.FromState(b.state)); err != nil {
		b.logger.Error("saving layout", "scope", b.scope, "err", err)
	}
}

func applyResize(layouts []layout.WidgetLayout, visible layout.Set, id string, width *float64, height *int) []layout.WidgetLayout {
	switch {
	case width != nil && height != nil:
		return layout.Resize(layouts, visible, id, *width, *height)
	case width != nil:
		return layout.ResizeWidth(layouts, visible, id, *width)
	case height != nil:
		return layout.ResizeHeight(layouts, visible, id, *height)
	default:
		return append([]layout.WidgetLayout(nil), layouts...)
	}
}

func newGesture(kind, widgetID string) Gesture {
	return Gesture{
		ID:       uuid.NewString(),
		Kind:     kind,
		WidgetID: widgetID,
		Started:  time.Now().UTC(),
	}
}

func sameLayouts(a, b []layout.WidgetLayout) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
