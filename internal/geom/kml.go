package geom

import (
	"encoding/xml"
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPolygon struct {
	Outer kmlCoords   `xml:"outerBoundaryIs>LinearRing"`
	Inner []kmlCoords `xml:"innerBoundaryIs>LinearRing"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

// kmlGeometry holds the geometry elements of a Placemark or MultiGeometry.
type kmlGeometry struct {
	Point         []kmlCoords   `xml:"Point"`
	LineString    []kmlCoords   `xml:"LineString"`
	Polygon       []kmlPolygon  `xml:"Polygon"`
	MultiGeometry []kmlGeometry `xml:"MultiGeometry"`
}

type kmlPlacemark struct {
	ID          string    `xml:"id,attr"`
	Name        *string   `xml:"name"`
	Description *string   `xml:"description"`
	Data        []kmlData `xml:"ExtendedData>Data"`
	kmlGeometry
}

// kmlContainer is the kml root, a Document or a Folder; containers nest.
type kmlContainer struct {
	Placemarks []kmlPlacemark `xml:"Placemark"`
	Folders    []kmlContainer `xml:"Folder"`
	Documents  []kmlContainer `xml:"Document"`
}

func (c kmlContainer) placemarks() []kmlPlacemark {
	out := append([]kmlPlacemark(nil), c.Placemarks...)
	for _, sub := range c.Documents {
		out = append(out, sub.placemarks()...)
	}
	for _, sub := range c.Folders {
		out = append(out, sub.placemarks()...)
	}
	return out
}

// LoadKML extracts Placemarks with Point, LineString, Polygon or
// MultiGeometry geometry from any depth of Document and Folder nesting.
// Attributes are name, description and ExtendedData in document order.
// KML coordinates are "lon,lat[,alt]"; altitude is ignored.
func LoadKML(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Collection{}, err
	}
	return ParseKML(data)
}

// ParseKML is LoadKML over bytes.
func ParseKML(data []byte) (Collection, error) {
	var root kmlContainer
	if err := xml.Unmarshal(data, &root); err != nil {
		return Collection{}, err
	}
	var c Collection
	for i, pm := range root.placemarks() {
		g := pm.geometry()
		if g == nil {
			continue
		}
		id := pm.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		c.Add(Feature{ID: id, Geometry: g, Attrs: pm.attrs()})
	}
	if len(c.Features) == 0 {
		return Collection{}, errors.New("kml: no placemarks found")
	}
	return c, nil
}

func (pm kmlPlacemark) attrs() []Attr {
	var out []Attr
	if pm.Name != nil {
		out = append(out, Attr{Name: "name", Value: strings.TrimSpace(*pm.Name)})
	}
	if pm.Description != nil {
		out = append(out, Attr{Name: "description", Value: strings.TrimSpace(*pm.Description)})
	}
	for _, d := range pm.Data {
		out = append(out, Attr{Name: d.Name, Value: strings.TrimSpace(d.Value)})
	}
	return out
}

// geometry returns the single member as is. Several members of one kind
// become a Multi* geometry, mixed members an orb.Collection.
func (kg kmlGeometry) geometry() orb.Geometry {
	var (
		members                orb.Collection
		points, lines, polygon int
	)
	for _, c := range kg.Point {
		if pts := parseKMLCoords(c.Coordinates); len(pts) > 0 {
			members = append(members, pts[0])
			points++
		}
	}
	for _, c := range kg.LineString {
		if pts := parseKMLCoords(c.Coordinates); len(pts) >= 2 {
			members = append(members, orb.LineString(pts))
			lines++
		}
	}
	for _, p := range kg.Polygon {
		if poly := p.polygon(); poly != nil {
			members = append(members, poly)
			polygon++
		}
	}
	for _, mg := range kg.MultiGeometry {
		if g := mg.geometry(); g != nil {
			members = append(members, g)
		}
	}

	switch n := len(members); {
	case n == 0:
		return nil
	case n == 1:
		return members[0]
	case points == n:
		mp := make(orb.MultiPoint, n)
		for i, g := range members {
			mp[i] = g.(orb.Point)
		}
		return mp
	case lines == n:
		mls := make(orb.MultiLineString, n)
		for i, g := range members {
			mls[i] = g.(orb.LineString)
		}
		return mls
	case polygon == n:
		mp := make(orb.MultiPolygon, n)
		for i, g := range members {
			mp[i] = g.(orb.Polygon)
		}
		return mp
	}
	return members
}

func (p kmlPolygon) polygon() orb.Polygon {
	outer := parseKMLCoords(p.Outer.Coordinates)
	if len(outer) < 3 {
		return nil
	}
	poly := orb.Polygon{orb.Ring(outer)}
	for _, in := range p.Inner {
		if ring := parseKMLCoords(in.Coordinates); len(ring) >= 3 {
			poly = append(poly, orb.Ring(ring))
		}
	}
	return poly
}

// coordinates may contain multiple tuples separated by whitespace
func parseKMLCoords(s string) []orb.Point {
	var out []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, orb.Point{lon, lat})
	}
	return out
}
