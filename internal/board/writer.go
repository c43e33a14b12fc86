package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcatz/dashboard-layout/internal/layout"
)

// Export is the document written by WriteFrame.
type Export struct {
	Scope   string                `json:"scope"`
	Visible []string              `json:"visible"`
	Layouts []layout.WidgetLayout `json:"layouts"`
	Frame   layout.Frame          `json:"frame"`
}

// NewExport captures the committed arrangement of b.
func NewExport(b *Board) Export {
	state := b.Snapshot()
	rows := layout.GroupByRow(state.Layouts, state.VisibleSet())
	return Export{
		Scope:   b.Scope(),
		Visible: state.Visible,
		Layouts: state.Layouts,
		Frame:   layout.Place(rows),
	}
}

// MarshalExport encodes e as indented JSON with a trailing newline.
func MarshalExport(e Export) ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling layout: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFrame writes e to fpath as JSON, returning the size.
func WriteFrame(e Export, fpath string, dryRun bool) (int, error) {
	data, err := MarshalExport(e)
	if err != nil {
		return 0, err
	}
	size := len(data)
	filename := filepath.Base(fpath)

	if !dryRun {
		if err := os.WriteFile(fpath, data, 0644); err != nil {
			return 0, fmt.Errorf("writing %s: %w", fpath, err)
		}
	}

	fmt.Printf("  %s: %d widgets, %s bytes\n", filename, len(e.Frame.Rects), formatSize(size))
	return size, nil
}

func formatSize(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	s := fmt.Sprintf("%d", n)
	// insert commas
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}
