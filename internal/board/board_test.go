package board

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/wcatz/dashboard-layout/internal/layout"
	"github.com/wcatz/dashboard-layout/internal/store"
)

var testCatalog = layout.Catalog{
	{ID: "schedule", Title: "Schedule", DefaultVisible: true, WidthPercent: 50},
	{ID: "roster", Title: "Roster", DefaultVisible: true, WidthPercent: 50},
	{ID: "notes", Title: "Notes", DefaultVisible: true},
	{ID: "calendar", Title: "Calendar"},
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.DebugLevel})
}

func newTestBoard(t *testing.T) (*Board, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := NewService(st, testCatalog, quietLogger())
	b, err := svc.Board(context.Background(), "user:alice")
	if err != nil {
		t.Fatalf("Board: %v", err)
	}
	return b, st
}

func find(t *testing.T, layouts []layout.WidgetLayout, id string) layout.WidgetLayout {
	t.Helper()
	for _, l := range layouts {
		if l.ID == id {
			return l
		}
	}
	t.Fatalf("no layout for %s", id)
	return layout.WidgetLayout{}
}

func saved(t *testing.T, st store.Store, scope string) layout.State {
	t.Helper()
	snap, err := st.Load(context.Background(), scope)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap == nil {
		t.Fatalf("nothing saved for %s", scope)
	}
	return snap.State()
}

func ptr[T any](v T) *T { return &v }

func TestServiceDefaultsOnMiss(t *testing.T) {
	b, st := newTestBoard(t)
	s := b.Snapshot()
	if len(s.Visible) != 3 {
		t.Fatalf("visible = %v, want the three default widgets", s.Visible)
	}
	if rows := b.Rows(); len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}
	if snap, _ := st.Load(context.Background(), "user:alice"); snap != nil {
		t.Error("defaults should not be saved before a commit")
	}
}

func TestServiceLoadsSaved(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	want := layout.State{
		Visible: []string{"calendar"},
		Layouts: []layout.WidgetLayout{{ID: "calendar", WidthPercent: 100, HeightPx: 500}},
	}
	if err := st.Save(ctx, "device:d1", store.FromState(want)); err != nil {
		t.Fatal(err)
	}
	svc := NewService(st, testCatalog, quietLogger())
	b, err := svc.Board(ctx, "device:d1")
	if err != nil {
		t.Fatal(err)
	}
	got := b.Snapshot()
	if len(got.Visible) != 1 || got.Visible[0] != "calendar" {
		t.Errorf("visible = %v, want [calendar]", got.Visible)
	}
	if find(t, got.Layouts, "calendar").HeightPx != 500 {
		t.Error("saved height lost")
	}

	again, _ := svc.Board(ctx, "device:d1")
	if again != b {
		t.Error("boards should be cached per scope")
	}
}

func TestServiceUnknownWidgetFallsBack(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	bad := layout.State{
		Visible: []string{"retired"},
		Layouts: []layout.WidgetLayout{{ID: "retired", WidthPercent: 100, HeightPx: 300}},
	}
	st.Save(ctx, store.SharedScope, store.FromState(bad))

	svc := NewService(st, testCatalog, quietLogger())
	b, err := svc.Board(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if b.Scope() != store.SharedScope {
		t.Errorf("scope = %s, want %s", b.Scope(), store.SharedScope)
	}
	if len(b.Snapshot().Visible) != 3 {
		t.Error("expected defaults after unknown widget")
	}
}

func TestServiceCorruptFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	st, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save(context.Background(), "shared", &store.Snapshot{}); err != nil {
		t.Fatal(err)
	}
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			os.WriteFile(path, []byte("{not json"), 0644)
		}
		return nil
	})

	svc := NewService(st, testCatalog, quietLogger())
	b, err := svc.Board(context.Background(), "shared")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Snapshot().Visible) != 3 {
		t.Error("expected defaults after corrupt payload")
	}
}

func TestServiceEmptyPayloadFallsBack(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	if err := st.Save(ctx, "shared", &store.Snapshot{}); err != nil {
		t.Fatal(err)
	}
	b, err := NewService(st, testCatalog, quietLogger()).Board(ctx, "shared")
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Snapshot().Visible) != 3 {
		t.Errorf("visible = %v, want defaults", b.Snapshot().Visible)
	}
}

func TestServiceSetCatalogDropsBoards(t *testing.T) {
	svc := NewService(store.NewMemoryStore(), testCatalog, quietLogger())
	ctx := context.Background()
	first, _ := svc.Board(ctx, "a")
	if got := svc.Scopes(); len(got) != 1 || got[0] != "a" {
		t.Errorf("scopes = %v", got)
	}
	svc.SetCatalog(testCatalog[:1])
	if len(svc.Scopes()) != 0 {
		t.Error("SetCatalog should drop loaded boards")
	}
	second, _ := svc.Board(ctx, "a")
	if first == second {
		t.Error("board should be rebuilt after catalog change")
	}
	if got := second.Snapshot().Visible; len(got) != 1 || got[0] != "schedule" {
		t.Errorf("visible = %v, want [schedule]", got)
	}
}

func TestDragCommitPersists(t *testing.T) {
	ctx := context.Background()
	b, st := newTestBoard(t)

	g, err := b.StartDrag("notes")
	if err != nil {
		t.Fatal(err)
	}
	if g.ID == "" || g.Kind != KindDrag || g.WidgetID != "notes" {
		t.Errorf("gesture = %+v", g)
	}
	if cur, ok := b.Dragging(); !ok || cur.ID != g.ID {
		t.Error("drag should be in progress")
	}

	s, err := b.EndDrag(ctx, g.ID, layout.RowGapID(0))
	if err != nil {
		t.Fatal(err)
	}
	if n := find(t, s.Layouts, "notes"); n.Row != 0 || n.WidthPercent != 100 {
		t.Errorf("notes = %+v, want alone in row 0", n)
	}
	if _, ok := b.Dragging(); ok {
		t.Error("drag should be finished")
	}

	persisted := saved(t, st, "user:alice")
	if find(t, persisted.Layouts, "notes").Row != 0 {
		t.Error("drop was not persisted")
	}
}

func TestDragStaleGesture(t *testing.T) {
	ctx := context.Background()
	b, st := newTestBoard(t)
	before := b.Snapshot()

	g, _ := b.StartDrag("schedule")
	if _, err := b.EndDrag(ctx, "not-"+g.ID, "notes"); !errors.Is(err, ErrNoGesture) {
		t.Errorf("err = %v, want ErrNoGesture", err)
	}
	if _, ok := b.Dragging(); !ok {
		t.Error("mismatched id should not end the drag")
	}
	if err := b.CancelDrag(g.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := b.EndDrag(ctx, g.ID, "notes"); !errors.Is(err, ErrNoGesture) {
		t.Errorf("err after cancel = %v, want ErrNoGesture", err)
	}
	if err := b.CancelDrag(g.ID); !errors.Is(err, ErrNoGesture) {
		t.Errorf("second cancel = %v, want ErrNoGesture", err)
	}

	after := b.Snapshot()
	for i := range before.Layouts {
		if before.Layouts[i] != after.Layouts[i] {
			t.Errorf("layout changed: %+v -> %+v", before.Layouts[i], after.Layouts[i])
		}
	}
	if snap, _ := st.Load(ctx, "user:alice"); snap != nil {
		t.Error("nothing should be saved")
	}
}

func TestDragDropOutside(t *testing.T) {
	ctx := context.Background()
	b, st := newTestBoard(t)
	g, _ := b.StartDrag("schedule")
	if _, err := b.EndDrag(ctx, g.ID, ""); err != nil {
		t.Fatal(err)
	}
	if snap, _ := st.Load(ctx, "user:alice"); snap != nil {
		t.Error("drop outside should not save")
	}
}

func TestStartDragHidden(t *testing.T) {
	b, _ := newTestBoard(t)
	if _, err := b.StartDrag("calendar"); !errors.Is(err, ErrNotVisible) {
		t.Errorf("err = %v, want ErrNotVisible", err)
	}
}

func TestStartDragReplacesPrevious(t *testing.T) {
	b, _ := newTestBoard(t)
	first, _ := b.StartDrag("schedule")
	second, _ := b.StartDrag("roster")
	if first.ID == second.ID {
		t.Fatal("gesture ids should differ")
	}
	if err := b.CancelDrag(first.ID); !errors.Is(err, ErrNoGesture) {
		t.Error("first gesture should have been abandoned")
	}
}

func TestResizePreviewDoesNotCommit(t *testing.T) {
	ctx := context.Background()
	b, st := newTestBoard(t)

	rows, err := b.PreviewResize("schedule", ptr(70.0), nil)
	if err != nil {
		t.Fatal(err)
	}
	if w := find(t, rows[0].Widgets, "roster").WidthPercent; w != 30 {
		t.Errorf("previewed roster = %v, want 30", w)
	}
	if g, ok := b.Resizing(); !ok || g.Kind != KindResize || g.WidgetID != "schedule" {
		t.Errorf("resize gesture = %+v, %v", g, ok)
	}
	if w := find(t, b.Snapshot().Layouts, "schedule").WidthPercent; w != 50 {
		t.Errorf("canonical width = %v after preview, want 50", w)
	}

	b.CancelResize()
	if _, ok := b.Resizing(); ok {
		t.Error("preview should be discarded")
	}
	if snap, _ := st.Load(ctx, "user:alice"); snap != nil {
		t.Error("preview should not save")
	}
}

func TestResizeCommit(t *testing.T) {
	ctx := context.Background()
	b, st := newTestBoard(t)

	b.PreviewResize("schedule", ptr(60.0), nil)
	s, err := b.CommitResize(ctx, "schedule", ptr(70.0), ptr(400))
	if err != nil {
		t.Fatal(err)
	}
	sc := find(t, s.Layouts, "schedule")
	if sc.WidthPercent != 70 || sc.HeightPx != 400 {
		t.Errorf("schedule = %+v", sc)
	}
	if find(t, s.Layouts, "roster").WidthPercent != 30 {
		t.Error("roster should take the remainder")
	}
	if _, ok := b.Resizing(); ok {
		t.Error("commit should clear the preview")
	}
	if find(t, saved(t, st, "user:alice").Layouts, "schedule").WidthPercent != 70 {
		t.Error("resize not persisted")
	}

	if _, err := b.CommitResize(ctx, "calendar", ptr(50.0), nil); !errors.Is(err, ErrNotVisible) {
		t.Errorf("err = %v, want ErrNotVisible", err)
	}
}

func TestResizeHeightOnly(t *testing.T) {
	b, _ := newTestBoard(t)
	s, err := b.CommitResize(context.Background(), "notes", nil, ptr(10))
	if err != nil {
		t.Fatal(err)
	}
	if h := find(t, s.Layouts, "notes").HeightPx; h != layout.MinHeightPx {
		t.Errorf("height = %d, want clamped to %d", h, layout.MinHeightPx)
	}
}

func TestToggleAndReset(t *testing.T) {
	ctx := context.Background()
	b, st := newTestBoard(t)

	s := b.Toggle(ctx, "calendar", true)
	if !s.VisibleSet().Has("calendar") {
		t.Fatal("calendar should be visible")
	}
	if !saved(t, st, "user:alice").VisibleSet().Has("calendar") {
		t.Error("toggle not persisted")
	}

	s = b.Toggle(ctx, "schedule", false)
	if s.VisibleSet().Has("schedule") {
		t.Error("schedule should be hidden")
	}

	s = b.Reset(ctx, nil)
	if len(s.Visible) != 3 || s.VisibleSet().Has("calendar") {
		t.Errorf("visible after reset = %v", s.Visible)
	}

	s = b.Reset(ctx, layout.Catalog{{ID: "calendar", DefaultVisible: true}})
	if len(s.Visible) != 1 || s.Visible[0] != "calendar" {
		t.Errorf("visible after preset reset = %v", s.Visible)
	}
}

type failingStore struct{ store.Store }

func (failingStore) Save(ctx context.Context, scope string, snap *store.Snapshot) error {
	return errors.New("disk full")
}

func TestSaveFailureKeepsCommit(t *testing.T) {
	svc := NewService(failingStore{store.NewMemoryStore()}, testCatalog, quietLogger())
	b, err := svc.Board(context.Background(), "shared")
	if err != nil {
		t.Fatal(err)
	}
	s := b.Toggle(context.Background(), "calendar", true)
	if !s.VisibleSet().Has("calendar") {
		t.Error("commit should stand when save fails")
	}
	if !b.Snapshot().VisibleSet().Has("calendar") {
		t.Error("canonical state lost the commit")
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	b, _ := newTestBoard(t)
	s := b.Snapshot()
	s.Layouts[0].WidthPercent = 1
	if b.Snapshot().Layouts[0].WidthPercent == 1 {
		t.Error("Snapshot should return a copy")
	}
}

func TestFrame(t *testing.T) {
	b, _ := newTestBoard(t)
	f := b.Frame()
	if len(f.Rects) != 3 {
		t.Fatalf("rects = %d, want 3", len(f.Rects))
	}
	if f.Height != 2*layout.DefaultHeightPx {
		t.Errorf("height = %d, want %d", f.Height, 2*layout.DefaultHeightPx)
	}
}
