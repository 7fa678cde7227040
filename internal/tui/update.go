package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"parcelmap/internal/geom"
	"parcelmap/internal/mapview"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case frameMsg:
		if !m.animating {
			return m, nil
		}
		m.animElapsed = time.Time(msg).Sub(m.animStart)
		if m.anim.Done(m.animElapsed) {
			m.animating = false
			return m, nil
		}
		return m, tick()
	case tea.KeyMsg:
		switch m.mode {
		case modePaste:
			return m.updatePaste(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeLayers:
			return m.updateLayers(msg)
		case modeTable:
			return m.updateTable(msg)
		}
		return m.updateMap(msg)
	case tea.MouseMsg:
		if m.mode != modeMap {
			return m, nil
		}
		return m.updateMouse(msg)
	}
	return m, nil
}

func (m Model) updateMap(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		if m.ctl.Measure().Active() {
			m.ctl.StopMeasure()
			m.status = "measure off"
		} else {
			m.ctl.ClosePopup()
		}
		return m, nil
	case "left", "right", "up", "down":
		if m.showSidebar && (key == "up" || key == "down") {
			var cmd tea.Cmd
			m.files, cmd = m.files.Update(msg)
			return m, cmd
		}
		return m, m.pan(key)
	case "tab":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			m.refreshDir()
		}
		m.resize()
		return m, nil
	case "enter":
		if m.showSidebar {
			if it, ok := m.files.SelectedItem().(fileItem); ok {
				m.loadPath(it.path)
				return m, m.animate()
			}
		}
		return m, nil
	case "p":
		m.mode = modePaste
		m.ta.SetValue("")
		m.ta.Focus()
		m.status = "paste mode"
		return m, nil
	case "/":
		m.mode = modeSearch
		m.search.SetValue("")
		m.search.Focus()
		return m, nil
	case "L":
		m.refreshLayers()
		m.mode = modeLayers
		return m, nil
	case "t":
		if m.refreshTable() {
			m.mode = modeTable
		}
		return m, nil
	case "?":
		m.helpVisible = !m.helpVisible
		return m, nil
	}
	ct, ok := m.ctl.ControlForKey(key)
	if !ok {
		return m, nil
	}
	ct.Do(m.ctl)
	switch ct.ID {
	case "fullscreen":
		m.resize()
	case "measure-length", "measure-area":
		m.status = "measure " + m.ctl.Measure().Mode.String()
	default:
		m.status = fmt.Sprintf("%s  zoom %.0f", ct.Tip, m.ctl.View().Zoom)
	}
	m.log.Debug().Str("control", ct.ID).Float64("zoom", m.ctl.View().Zoom).Msg("control")
	return m, m.animate()
}

// pan moves the view by an eighth of the canvas.
func (m *Model) pan(key string) tea.Cmd {
	vp := m.ctl.Viewport()
	dx, dy := float64(vp.Width)/8, float64(vp.Height)/8
	switch key {
	case "left":
		m.ctl.Pan(-dx, 0)
	case "right":
		m.ctl.Pan(dx, 0)
	case "up":
		m.ctl.Pan(0, -dy)
	case "down":
		m.ctl.Pan(0, dy)
	}
	m.animating = false
	return nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p, inside := m.cellPixel(msg.X, msg.Y)
	m.hovering = inside
	if inside {
		m.pointer = p
	}
	if !inside {
		return m, nil
	}
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.ctl.ZoomIn()
		return m, m.animate()
	case msg.Button == tea.MouseButtonWheelDown:
		m.ctl.ZoomOut()
		return m, m.animate()
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		// the controller hit-tests its target view, so snap to it first
		m.animating = false
		m.click(p)
	}
	return m, nil
}

// click feeds the active measure tool, or hit-tests for the popup.
func (m *Model) click(p mapview.Pixel) {
	if m.ctl.Measure().Active() {
		if m.ctl.MeasureAt(p) {
			ms := m.ctl.Measure()
			m.status = fmt.Sprintf("%s: %s", ms.Mode, ms.Format())
		}
		return
	}
	hit, ok := m.ctl.Click(p)
	if !ok {
		m.status = "no feature here"
		return
	}
	m.status = fmt.Sprintf("%s: feature %s", hit.Layer.Title, hit.Feature.ID)
	m.log.Debug().Str("layer", hit.Layer.ID).Str("feature", hit.Feature.ID).Msg("popup")
}

func (m Model) updatePaste(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeMap
		m.ta.Blur()
		m.status = "view mode"
		return m, nil
	case "enter":
		w := strings.TrimSpace(m.ta.Value())
		if w == "" {
			m.status = "paste: empty"
			return m, nil
		}
		coll, err := geom.ParseWKT(w)
		if err != nil {
			m.status = "wkt error: " + err.Error()
			return m, nil
		}
		m.pasted++
		id := fmt.Sprintf("wkt-%d", m.pasted)
		m.addLayer(id, "Pasted WKT "+fmt.Sprint(m.pasted), coll)
		m.mode = modeMap
		m.ta.Blur()
		return m, m.animate()
	}
	var cmd tea.Cmd
	m.ta, cmd = m.ta.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeMap
		m.search.Blur()
		return m, nil
	case "enter":
		q := strings.TrimSpace(m.search.Value())
		m.mode = modeMap
		m.search.Blur()
		if q == "" {
			return m, nil
		}
		hit, ok := m.ctl.Search(q)
		if !ok {
			m.status = fmt.Sprintf("no feature matches %q", q)
			return m, nil
		}
		m.status = fmt.Sprintf("found %s in %s", hit.Feature.ID, hit.Layer.Title)
		return m, m.animate()
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateLayers(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "L", "q":
		m.mode = modeMap
		return m, nil
	case "enter", " ":
		if it, ok := m.layers.SelectedItem().(layerItem); ok {
			visible, err := m.ctl.ToggleLayer(it.id)
			if err != nil {
				m.status = err.Error()
			} else {
				m.status = fmt.Sprintf("%s: visible %v", it.title, visible)
			}
			m.refreshLayers()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.layers, cmd = m.layers.Update(msg)
	return m, cmd
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "t", "q":
		m.mode = modeMap
		return m, nil
	case "enter":
		i := m.tbl.Cursor()
		m.mode = modeMap
		if i < 0 || i >= len(m.tblRefs) {
			return m, nil
		}
		ref := m.tblRefs[i]
		if hit, ok := m.ctl.Select(ref.layer, ref.index); ok {
			m.status = fmt.Sprintf("%s: feature %s", hit.Layer.Title, hit.Feature.ID)
			return m, m.animate()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}
