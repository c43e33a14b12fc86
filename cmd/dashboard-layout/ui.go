package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/wcatz/dashboard-layout/internal/layout"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleInfo    = lipgloss.NewStyle().Foreground(colorGray)

	styleWidget = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)
	styleGap = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"

	// minBoxWidth is the narrowest box that still fits a border and a few
	// characters of title.
	minBoxWidth = 8
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// renderBoard draws rows as bordered boxes, each box as wide as its share
// of width columns. Row gaps are labelled with their drop target ids.
func renderBoard(rows []layout.Row, catalog layout.Catalog, width int) string {
	var b strings.Builder
	for i, r := range rows {
		b.WriteString(styleGap.Render(layout.RowGapID(i)))
		b.WriteByte('\n')
		b.WriteString(renderRow(r, catalog, width))
		b.WriteByte('\n')
	}
	b.WriteString(styleGap.Render(layout.RowGapID(len(rows))))
	return b.String()
}

func renderRow(r layout.Row, catalog layout.Catalog, width int) string {
	boxes := make([]string, 0, len(r.Widgets))
	used := 0
	for i, w := range r.Widgets {
		cols := int(w.WidthPercent / layout.MaxWidthPercent * float64(width))
		if i == len(r.Widgets)-1 {
			cols = width - used
		}
		if cols < minBoxWidth {
			cols = minBoxWidth
		}
		used += cols

		title := w.ID
		if def, ok := catalog.Get(w.ID); ok && def.Title != "" {
			title = def.Title
		}
		body := styleTitle.Render(title) + "\n" +
			styleDim.Render(fmt.Sprintf("%s  %.4g%% × %dpx", w.ID, w.WidthPercent, w.HeightPx))
		// the border takes two columns
		boxes = append(boxes, styleWidget.Width(cols-2).Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}
