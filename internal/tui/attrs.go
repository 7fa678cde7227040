package tui

import (
	"fmt"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"

	"parcelmap/internal/mapview"
)

const maxColW = 24

// tableLayer picks the layer shown in the attribute table: the one behind the
// open popup, else the topmost visible vector layer.
func (m *Model) tableLayer() (*mapview.Layer, bool) {
	if lid, _ := m.ctl.Popup().Feature(); m.ctl.Popup().Visible() {
		if l, ok := m.ctl.Layer(lid); ok {
			return l, true
		}
	}
	layers := m.ctl.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		if l := layers[i]; l.Visible && l.Interactive() && len(l.Features()) > 0 {
			return l, true
		}
	}
	return nil, false
}

// refreshTable rebuilds the table columns and rows from a layer's features.
// Columns are the union of attribute names in first-seen order.
func (m *Model) refreshTable() bool {
	l, ok := m.tableLayer()
	if !ok {
		m.status = "no attributes to show"
		return false
	}
	var order []string
	col := map[string]int{}
	for _, f := range l.Features() {
		for _, a := range f.Properties(l.GeometryName) {
			if _, seen := col[a.Name]; !seen {
				col[a.Name] = len(order)
				order = append(order, a.Name)
			}
		}
	}
	if len(order) == 0 {
		m.status = "no attributes for " + l.Title
		return false
	}
	tcols := make([]table.Column, 0, len(order)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	for _, c := range order {
		tcols = append(tcols, table.Column{Title: c, Width: min(len(c)+2, maxColW)})
	}
	trows := make([]table.Row, 0, len(l.Features()))
	m.tblRefs = m.tblRefs[:0]
	for i, f := range l.Features() {
		row := make(table.Row, len(tcols))
		row[0] = fmt.Sprintf("%d", i+1)
		for _, a := range f.Properties(l.GeometryName) {
			j := col[a.Name] + 1
			row[j] = a.Value
			tcols[j].Width = min(max(tcols[j].Width, len(a.Value)+2), maxColW)
		}
		trows = append(trows, row)
		m.tblRefs = append(m.tblRefs, featureRef{layer: l.ID, index: i})
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
	m.tbl.SetCursor(0)
	m.status = fmt.Sprintf("attributes: %s (%d features)", l.Title, len(trows))
	return true
}

type layerItem struct {
	id, title, desc string
}

func (i layerItem) Title() string       { return i.title }
func (i layerItem) Description() string { return i.desc }
func (i layerItem) FilterValue() string { return i.title }

// refreshLayers lists layers topmost first, the way a layer switcher does.
func (m *Model) refreshLayers() {
	layers := m.ctl.Layers()
	items := make([]list.Item, 0, len(layers))
	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		box := "[ ]"
		if l.Visible {
			box = "[x]"
		}
		title := box + " " + l.Title
		if l.Group != "" {
			title = box + " " + l.Group + " / " + l.Title
		}
		items = append(items, layerItem{id: l.ID, title: title, desc: string(l.Kind) + "  " + l.Source()})
	}
	idx := m.layers.Index()
	m.layers.SetItems(items)
	if idx < len(items) {
		m.layers.Select(idx)
	}
}
