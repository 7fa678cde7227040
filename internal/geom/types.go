package geom

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultGeometryName is the attribute name that carries a feature's geometry
// in sources that mix geometry into the attribute record.
const DefaultGeometryName = "geometry"

// Attr is one named attribute with its display text.
// Null marks a value that was undefined in the source (JSON null, SQL NULL,
// a missing CSV cell).
type Attr struct {
	Name  string
	Value string
	Null  bool
}

// Feature is a geometry plus its attributes in source order.
// Geometry is always lon/lat (EPSG:4326).
type Feature struct {
	ID       string
	Geometry orb.Geometry
	Attrs    []Attr
}

// Collection is a minimal feature container for rendering
type Collection struct {
	Features []Feature
	Bound    orb.Bound
}

// Add appends a feature and grows the bound.
func (c *Collection) Add(f Feature) {
	if f.Geometry == nil {
		return
	}
	b := f.Geometry.Bound()
	if len(c.Features) == 0 {
		c.Bound = b
	} else {
		c.Bound = c.Bound.Union(b)
	}
	c.Features = append(c.Features, f)
}

// Counts returns the number of point, line and polygon features.
func (c Collection) Counts() (points, lines, polys int) {
	for _, f := range c.Features {
		switch f.Geometry.Dimensions() {
		case 0:
			points++
		case 1:
			lines++
		default:
			polys++
		}
	}
	return points, lines, polys
}

// Properties returns the displayable attributes: undefined values and the
// geometry attribute are left out, order is kept.
func (f Feature) Properties(geometryName string) []Attr {
	if geometryName == "" {
		geometryName = DefaultGeometryName
	}
	out := make([]Attr, 0, len(f.Attrs))
	for _, a := range f.Attrs {
		if a.Null || a.Name == geometryName {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Value returns the text of the named attribute.
func (f Feature) Value(name string) (string, bool) {
	for _, a := range f.Attrs {
		if a.Name == name && !a.Null {
			return a.Value, true
		}
	}
	return "", false
}

// Matches reports whether any defined attribute value contains q, ignoring case.
func (f Feature) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return false
	}
	for _, a := range f.Attrs {
		if !a.Null && strings.Contains(strings.ToLower(a.Value), q) {
			return true
		}
	}
	return false
}

// Anchor is the coordinate a popup attaches to.
// Points anchor on themselves, multipoints on their first member and
// everything else on its centroid.
func Anchor(g orb.Geometry) orb.Point {
	switch g := g.(type) {
	case orb.Point:
		return g
	case orb.MultiPoint:
		if len(g) > 0 {
			return g[0]
		}
	}
	c, _ := planar.CentroidArea(g)
	return c
}
