package mapview

import (
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"

	"parcelmap/internal/geom"
)

// Kind is the type of a layer's source.
type Kind string

const (
	KindOSM    Kind = "osm"
	KindXYZ    Kind = "xyz"
	KindWMS    Kind = "wms"
	KindVector Kind = "vector"
)

// OSMURL is the standard street tile template.
const OSMURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// OSMAttribution is shown for OSM derived layers.
const OSMAttribution = "© OpenStreetMap contributors"

// WMS addresses a remote map-image service. It is configuration only; the
// service renders and delivers the imagery.
type WMS struct {
	URL        string
	Layers     string
	Tiled      bool
	ServerType string
}

// Layer is one entry of the map's layer stack.
type Layer struct {
	ID           string
	Title        string
	Group        string
	Kind         Kind
	Visible      bool
	ZIndex       int
	URL          string
	Attributions []string
	WMS          WMS
	// GeometryName is the attribute that holds geometry in the source and is
	// never shown in popups.
	GeometryName string

	features  []geom.Feature
	projected []orb.Geometry
	bound     orb.Bound
}

// NewVectorLayer builds an interactive layer and projects its features once.
func NewVectorLayer(id, title string, features []geom.Feature) *Layer {
	l := &Layer{
		ID:           id,
		Title:        title,
		Kind:         KindVector,
		Visible:      true,
		GeometryName: geom.DefaultGeometryName,
	}
	l.SetFeatures(features)
	return l
}

// SetFeatures replaces the layer's features.
func (l *Layer) SetFeatures(features []geom.Feature) {
	l.features = features
	l.projected = make([]orb.Geometry, len(features))
	l.bound = orb.Bound{}
	first := true
	for i, f := range features {
		if f.Geometry == nil {
			continue
		}
		g := project.Geometry(orb.Clone(f.Geometry), project.WGS84.ToMercator)
		l.projected[i] = g
		if first {
			l.bound = g.Bound()
			first = false
		} else {
			l.bound = l.bound.Union(g.Bound())
		}
	}
}

// Features returns the layer's features in source order.
func (l *Layer) Features() []geom.Feature { return l.features }

// Projected returns feature i's geometry in view space.
func (l *Layer) Projected(i int) orb.Geometry { return l.projected[i] }

// Bound is the projected extent of the layer's features.
func (l *Layer) Bound() orb.Bound { return l.bound }

// Interactive reports whether the layer takes part in hit-testing.
func (l *Layer) Interactive() bool { return l.Kind == KindVector }

// TileURL expands the layer's {z}/{x}/{y} template for a tile.
func (l *Layer) TileURL(t maptile.Tile) (string, bool) {
	tmpl := l.URL
	switch l.Kind {
	case KindOSM:
		if tmpl == "" {
			tmpl = OSMURL
		}
	case KindXYZ:
	default:
		return "", false
	}
	if tmpl == "" {
		return "", false
	}
	r := strings.NewReplacer(
		"{z}", strconv.FormatUint(uint64(t.Z), 10),
		"{x}", strconv.FormatUint(uint64(t.X), 10),
		"{y}", strconv.FormatUint(uint64(t.Y), 10),
		"{-y}", strconv.FormatUint(uint64(1<<uint(t.Z)-1-t.Y), 10),
	)
	return r.Replace(tmpl), true
}

// Source describes where the layer's content comes from.
func (l *Layer) Source() string {
	switch l.Kind {
	case KindOSM:
		if l.URL == "" {
			return OSMURL
		}
		return l.URL
	case KindXYZ:
		return l.URL
	case KindWMS:
		s := l.WMS.URL + " LAYERS=" + l.WMS.Layers
		if l.WMS.Tiled {
			s += " TILED=true"
		}
		return s
	case KindVector:
		return strconv.Itoa(len(l.features)) + " features"
	}
	return ""
}

// drawOrder returns layers sorted by ZIndex, keeping insertion order for ties.
func drawOrder(layers []*Layer) []*Layer {
	out := make([]*Layer, len(layers))
	copy(out, layers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}
