package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column. A zero Width sizes the column to its
// widest cell.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
}

// NewTable creates a new table.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, Row(cells))
}

func (t *Table) widths() []int {
	out := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		if col.Width > 0 {
			out[i] = col.Width
			continue
		}
		w := len(col.Title)
		for _, row := range t.Rows {
			if i < len(row) && len(row[i]) > w {
				w = len(row[i])
			}
		}
		out[i] = w
	}
	return out
}

// Render returns the full table as a string. Cells are padded before
// styling so ANSI codes never count against the width.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	widths := t.widths()

	var headers, divider []string
	for i, col := range t.Columns {
		headers = append(headers, headerStyle.Render(pad(col.Title, widths[i])))
		divider = append(divider, StyleMeta.Render(strings.Repeat("-", widths[i])))
	}
	sb.WriteString(strings.Join(headers, " ") + "\n")
	sb.WriteString(strings.Join(divider, " ") + "\n")

	for i, row := range t.Rows {
		style := cellStyle
		if i == t.SelIdx {
			style = StyleSelected
		}
		cells := make([]string, len(t.Columns))
		for j := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells[j] = style.Render(pad(val, widths[j]))
		}
		sb.WriteString(strings.Join(cells, " ") + "\n")
	}

	return sb.String()
}

// pad left-aligns s within exactly width chars, truncating with an
// ellipsis when needed.
func pad(s string, width int) string {
	switch {
	case width <= 0:
		return ""
	case len(s) > width && width > 1:
		return s[:width-1] + "…"
	case len(s) > width:
		return s[:width]
	default:
		return s + strings.Repeat(" ", width-len(s))
	}
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-28s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}
