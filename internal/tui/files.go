package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"parcelmap/internal/geom"
	"parcelmap/internal/mapview"
)

// fileLayerZ keeps opened files above configured layers.
const fileLayerZ = 10

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !geom.Supported(name) {
			continue
		}
		items = append(items, fileItem{title: name, desc: strings.ToLower(filepath.Ext(name)), path: filepath.Join(m.cwd, name)})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.files.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in current directory"
	}
}

// loadPath opens a file as a vector layer and frames it.
func (m *Model) loadPath(p string) {
	coll, err := geom.Load(p)
	if err != nil {
		m.status = "load error: " + err.Error()
		m.log.Warn().Err(err).Str("path", p).Msg("load failed")
		return
	}
	base := filepath.Base(p)
	m.addLayer("file:"+base, base, coll)
}

func (m *Model) addLayer(id, title string, coll geom.Collection) {
	l := mapview.NewVectorLayer(id, title, coll.Features)
	l.ZIndex = fileLayerZ
	m.ctl.AddLayer(l)
	m.ctl.Fit(coll.Bound)
	pts, ls, polys := coll.Counts()
	m.status = fmt.Sprintf("loaded: %s  counts: pts=%d ls=%d poly=%d", title, pts, ls, polys)
	m.log.Info().Str("layer", id).Int("features", len(coll.Features)).Msg("layer added")
	if m.mode == modeTable {
		m.refreshTable()
	}
}
