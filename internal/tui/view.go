package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/mineraly/internal/catalog"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = cellStyle.Reverse(true)
)

// View renders the browser.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.opts.Title))
	if m.pipeline.Loaded() {
		fmt.Fprintf(&b, "  %s", dimStyle.Render(fmt.Sprintf("%d / %d", len(m.pipeline.View()), m.pipeline.Dataset().Len())))
	}
	b.WriteString("\n")
	b.WriteString(m.criteriaLine())
	b.WriteString("\n")

	switch {
	case !m.pipeline.Loaded():
		style := dimStyle
		if !m.loading {
			style = errorStyle
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	default:
		if m.status != "" {
			b.WriteString(errorStyle.Render(m.status))
			b.WriteString("\n")
		}
		b.WriteString(m.renderTable())
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) criteriaLine() string {
	if m.searching {
		return m.input.View()
	}
	region := m.selectedRegion()
	if region == "" {
		region = "všechny regiony"
	}
	parts := []string{"region: " + region}
	if q := m.input.Value(); q != "" {
		parts = append(parts, "hledat: "+q)
	}
	if s := m.pipeline.Sort(); s.Active {
		parts = append(parts, "řazení: "+s.Field.Label()+" "+s.Direction.Arrow())
	}
	return dimStyle.Render(strings.Join(parts, " · "))
}

func (m Model) helpLine() string {
	if m.sortPick {
		var keys []string
		for i, f := range sortable() {
			keys = append(keys, fmt.Sprintf("%c %s", pickKeys[i], f.Label()))
		}
		return "řadit podle: " + strings.Join(keys, ", ")
	}
	return "/ hledat · r region · 1-0 nebo s řadit · p fotky · ctrl+r načíst znovu · q konec"
}

// columns returns the displayed fields.
func (m Model) columns() []catalog.Field {
	var out []catalog.Field
	for _, f := range catalog.Columns() {
		if f == catalog.FieldPhoto && !m.photos {
			continue
		}
		out = append(out, f)
	}
	return out
}

// photoPath is where the photo of a specimen is expected.
func (m Model) photoPath(id string) string {
	if id == "" {
		return ""
	}
	return filepath.Join(m.opts.PhotosDir, id+m.opts.PhotoExt)
}

// Headers returns the table header texts with the sort indicator.
func Headers(fields []catalog.Field, s catalog.SortState) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Label()
		if ind := s.Indicator(f); ind != "" {
			out[i] += " " + ind
		}
	}
	return out
}

func (m Model) renderTable() string {
	fields := m.columns()
	d := m.pipeline.Dataset()
	view := m.pipeline.View()

	end := min(len(view), m.offset+m.pageSize())
	rows := make([][]string, 0, end-m.offset)
	for _, row := range view[m.offset:end] {
		cells := make([]string, len(fields))
		for i, f := range fields {
			if f == catalog.FieldPhoto {
				cells[i] = m.photoPath(d.Value(row, catalog.FieldIdentifier))
				continue
			}
			cells[i] = d.Value(row, f)
		}
		rows = append(rows, cells)
	}

	selected := m.cursor - m.offset
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(Headers(fields, m.pipeline.Sort())...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == selected:
				return selectedStyle
			default:
				return cellStyle
			}
		})
	if m.width > 0 {
		t = t.Width(m.width)
	}
	return t.Render()
}
