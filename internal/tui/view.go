package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb/maptile"

	"parcelmap/internal/mapview"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	a := m.mapArea()
	contentWidth := max(10, m.width)

	var mapView string
	switch m.mode {
	case modeTable:
		// Render attributes table centered in the map area
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		maxW := min(a.w, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(a.h-2, 20))
		box := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(a.w, a.h, lipgloss.Center, lipgloss.Center, box)
	case modeLayers:
		box := boxStyle.Render(m.layers.View())
		mapView = lipgloss.Place(a.w, a.h, lipgloss.Right, lipgloss.Top, box)
	case modePaste:
		mapView = lipgloss.NewStyle().Width(a.w).Height(a.h).Render(m.ta.View())
	default:
		mapView = lipgloss.NewStyle().Width(a.w).Height(a.h).Render(m.renderMap(a.w, a.h))
	}

	if m.ctl.Fullscreen() {
		return appStyle.Width(contentWidth).Height(m.height).Render(mapView)
	}

	body := mapView
	if m.showSidebar {
		sidebar := lipgloss.NewStyle().Width(sidebarWidth).Render(m.files.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	ui := lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(contentWidth), body, m.renderFooter(contentWidth))
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// renderHeader shows the title and the map controls.
func (m Model) renderHeader(width int) string {
	title := titleStyle.Render(" parcelmap ")
	var ctrls []string
	measure := m.ctl.Measure().Mode
	for _, c := range m.ctl.Controls() {
		st := controlStyle
		switch {
		case c.ID == "measure-length" && measure == mapview.MeasureLength,
			c.ID == "measure-area" && measure == mapview.MeasureArea:
			st = activeStyle
		}
		ctrls = append(ctrls, st.Render(c.Label+" "+c.Keys[0]))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, title, dimStyle.Render(strings.Join(ctrls, "")))
	return lipgloss.NewStyle().Width(width).MaxHeight(1).Render(row)
}

// renderFooter is the status and help row, then the readout row: pointer
// coordinate, zoom, tile, measure result and scale line.
func (m Model) renderFooter(width int) string {
	status := dimStyle.Render(" " + m.status + " ")
	if m.mode == modeSearch {
		status = " " + m.search.View()
	}
	first := lipgloss.JoinHorizontal(lipgloss.Bottom, status, m.renderHelp())

	var parts []string
	if m.hovering {
		if s := m.ctl.Pointer(m.pointer); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, fmt.Sprintf("z%.1f", m.ctl.View().Zoom))
	if m.hovering {
		if t, ok := m.ctl.TileAt(m.pointer); ok {
			parts = append(parts, tileLabel(t))
		}
	}
	if ms := m.ctl.Measure(); ms.Active() {
		parts = append(parts, ms.Mode.String()+" "+ms.Format())
	}
	if s := renderScale(m.ctl.ScaleLine()); s != "" {
		parts = append(parts, s)
	}
	second := dimStyle.Render("  " + strings.Join(parts, "   "))

	st := lipgloss.NewStyle().Width(width).MaxHeight(1)
	return lipgloss.JoinVertical(lipgloss.Left, st.Render(first), st.Render(second))
}

func tileLabel(t maptile.Tile) string {
	return fmt.Sprintf("tile %d/%d/%d", t.Z, t.X, t.Y)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"H home",
		"click popup",
		"L layers",
		"/ search",
		"m/M measure",
		"t attrs",
		"Tab files",
		"p paste",
		"f full",
		"? help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
