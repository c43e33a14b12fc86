package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleConfig = `
constants:
  data_dir: /var/lib/dashboard
store:
  backend: sqlite
  path: "${data_dir}/layouts.db"
server:
  listen_addr: ":9090"
presets:
  coaching:
    widgets: [drills, calendar]
widgets:
  schedule:
    title: Schedule
    icon: clock
    default_visible: true
    width: 50
  roster:
    title: Roster
    default_visible: true
    width: 50
    height: 400
  drills:
    title: Drill library
  calendar:
    icon: calendar
`

func TestLoadConfig(t *testing.T) {
	path := writeTestConfig(t, sampleConfig)
	c, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	sc := c.StoreConfig()
	if sc.Backend != "sqlite" {
		t.Errorf("backend = %s, want sqlite", sc.Backend)
	}
	if sc.Path != "/var/lib/dashboard/layouts.db" {
		t.Errorf("path = %s, want resolved constant", sc.Path)
	}
	if c.ListenAddr() != ":9090" {
		t.Errorf("listen addr = %s, want :9090", c.ListenAddr())
	}

	cat, err := c.Catalog("")
	if err != nil {
		t.Fatalf("Catalog error: %v", err)
	}
	if len(cat) != 4 {
		t.Fatalf("catalog size = %d, want 4", len(cat))
	}
	wantOrder := []string{"schedule", "roster", "drills", "calendar"}
	for i, id := range wantOrder {
		if cat[i].ID != id {
			t.Errorf("catalog[%d] = %s, want %s", i, cat[i].ID, id)
		}
	}
	if !cat[0].DefaultVisible || cat[2].DefaultVisible {
		t.Error("default_visible not honoured")
	}
	if cat[1].HeightPx != 400 || cat[0].WidthPercent != 50 {
		t.Errorf("sizes = %+v %+v", cat[0], cat[1])
	}
	if cat[3].Title != "calendar" {
		t.Errorf("untitled widget title = %q, want id", cat[3].Title)
	}
}

func TestOverrides(t *testing.T) {
	path := writeTestConfig(t, sampleConfig)
	c, err := Load(path, map[string]string{
		"store_backend": "memory",
		"store_path":    "/tmp/x",
		"listen_addr":   ":7000",
	})
	if err != nil {
		t.Fatal(err)
	}
	sc := c.StoreConfig()
	if sc.Backend != "memory" || sc.Path != "/tmp/x" {
		t.Errorf("store config = %+v, want overrides applied", sc)
	}
	if c.ListenAddr() != ":7000" {
		t.Errorf("listen addr = %s", c.ListenAddr())
	}
}

func TestListenAddrDefault(t *testing.T) {
	c, err := LoadFromBytes([]byte("widgets:\n  a: {title: A}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.ListenAddr() != ":8080" {
		t.Errorf("listen addr = %s, want :8080", c.ListenAddr())
	}
}

func TestCatalogWithPreset(t *testing.T) {
	c, err := LoadFromBytes([]byte(sampleConfig))
	if err != nil {
		t.Fatal(err)
	}
	cat, err := c.Catalog("coaching")
	if err != nil {
		t.Fatalf("Catalog error: %v", err)
	}
	for _, w := range cat {
		want := w.ID == "drills" || w.ID == "calendar"
		if w.DefaultVisible != want {
			t.Errorf("%s default visible = %v, want %v", w.ID, w.DefaultVisible, want)
		}
	}

	if _, err := c.Catalog("nonexistent"); err == nil {
		t.Error("expected error for nonexistent preset")
	}
}

func TestResolveRef(t *testing.T) {
	t.Setenv("DASHBOARD_TEST_HOST", "redis.internal:6379")
	c, err := LoadFromBytes([]byte(`
constants:
  db: layouts
widgets: {}
`))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	tests := []struct {
		input, want string
	}{
		{"${db}.sqlite", "layouts.sqlite"},
		{"${DASHBOARD_TEST_HOST}", "redis.internal:6379"},
		{"no refs here", "no refs here"},
		{"${unknown_ref_xyz}", "${unknown_ref_xyz}"},
	}
	for _, tt := range tests {
		got := c.ResolveRef(tt.input)
		if got != tt.want {
			t.Errorf("ResolveRef(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	c, err := LoadFromBytes([]byte(`
presets:
  broken:
    widgets: [ghost]
widgets:
  narrow:
    width: 5
  tall:
    height: 2000
  row-gap-1:
    title: clash
`))
	if err != nil {
		t.Fatal(err)
	}
	err = c.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"narrow", "tall", "row-gap-1", "ghost"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error missing %q: %v", want, err)
		}
	}

	empty, _ := LoadFromBytes([]byte("store: {backend: memory}\n"))
	if empty.Validate() == nil {
		t.Error("config without widgets should not validate")
	}
}

func TestWidgetOrder(t *testing.T) {
	c, err := LoadFromBytes([]byte(`
widgets:
  zeta: {}
  alpha: {}
  mid: {}
`))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"zeta", "alpha", "mid"}
	order := c.WidgetOrder()
	if len(order) != len(want) {
		t.Fatalf("order length = %d, want %d", len(order), len(want))
	}
	for i, id := range want {
		if order[i] != id {
			t.Errorf("order[%d] = %s, want %s", i, order[i], id)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil); err == nil {
		t.Error("expected error for missing file")
	}
}
