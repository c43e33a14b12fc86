package board

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFrame(t *testing.T) {
	b, _ := newTestBoard(t)
	e := NewExport(b)
	if e.Scope != "user:alice" || len(e.Frame.Rects) != 3 {
		t.Fatalf("export = %+v", e)
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	size, err := WriteFrame(e, path, false)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != size {
		t.Errorf("size = %d, file has %d bytes", size, len(data))
	}

	var back Export
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(back.Layouts) != 3 || back.Frame.Height != e.Frame.Height {
		t.Errorf("round trip = %+v", back)
	}
}

func TestWriteFrameDryRun(t *testing.T) {
	b, _ := newTestBoard(t)
	path := filepath.Join(t.TempDir(), "layout.json")
	if _, err := WriteFrame(NewExport(b), path, true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("dry run should not write")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
