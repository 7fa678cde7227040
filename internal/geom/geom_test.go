package geom

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
)

const parcels = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "KAK/1234",
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,2],[0,2],[0,0]]]},
      "properties": {"zeta": 1, "alpha": "x", "mid": null, "obj": {"a": 1}, "geometry": "hidden", "flag": true}
    },
    {
      "type": "Feature",
      "id": 7,
      "geometry": {"type": "Point", "coordinates": [34.75, 0.28]},
      "properties": {"name": "Kakamega"}
    },
    {
      "type": "Feature",
      "geometry": null,
      "properties": {"name": "orphan"}
    }
  ]
}`

func TestParseGeoJSONKeepsPropertyOrder(t *testing.T) {
	c, err := ParseGeoJSON([]byte(parcels))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Features) != 2 {
		t.Fatalf("features=%d, want 2 (null geometry skipped)", len(c.Features))
	}
	f := c.Features[0]
	if f.ID != "KAK/1234" {
		t.Fatalf("id=%q", f.ID)
	}
	var names []string
	for _, a := range f.Attrs {
		names = append(names, a.Name)
	}
	if got := strings.Join(names, ","); got != "zeta,alpha,mid,obj,geometry,flag" {
		t.Fatalf("attr order=%s", got)
	}
	if !f.Attrs[2].Null {
		t.Fatalf("mid should be null")
	}
	if f.Attrs[3].Value != `{"a":1}` {
		t.Fatalf("obj=%q", f.Attrs[3].Value)
	}
	if c.Features[1].ID != "7" {
		t.Fatalf("numeric id=%q", c.Features[1].ID)
	}
	if c.Bound.Min != (orb.Point{0, 0}) || c.Bound.Max != (orb.Point{34.75, 2}) {
		t.Fatalf("bound=%v", c.Bound)
	}
}

func TestPropertiesSkipsGeometryAndUndefined(t *testing.T) {
	c, err := ParseGeoJSON([]byte(parcels))
	if err != nil {
		t.Fatal(err)
	}
	props := c.Features[0].Properties("")
	want := []Attr{
		{Name: "zeta", Value: "1"},
		{Name: "alpha", Value: "x"},
		{Name: "obj", Value: `{"a":1}`},
		{Name: "flag", Value: "true"},
	}
	if len(props) != len(want) {
		t.Fatalf("props=%v", props)
	}
	for i := range want {
		if props[i] != want[i] {
			t.Fatalf("props[%d]=%v, want %v", i, props[i], want[i])
		}
	}
}

func TestParseGeoJSONSingleFeatureAndBareGeometry(t *testing.T) {
	c, err := ParseGeoJSON([]byte(`{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{"b":2,"a":1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Features) != 1 || c.Features[0].Attrs[0].Name != "b" {
		t.Fatalf("got %+v", c.Features)
	}
	c, err = ParseGeoJSON([]byte(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Features[0].Geometry.(orb.LineString); !ok {
		t.Fatalf("geometry=%T", c.Features[0].Geometry)
	}
	if _, err := ParseGeoJSON([]byte(`{"type":"FeatureCollection","features":[]}`)); err == nil {
		t.Fatal("expected error for empty collection")
	}
}

func TestAnchor(t *testing.T) {
	cases := []struct {
		name string
		g    orb.Geometry
		want orb.Point
	}{
		{"point", orb.Point{3, 4}, orb.Point{3, 4}},
		{"multipoint", orb.MultiPoint{{5, 6}, {7, 8}}, orb.Point{5, 6}},
		{"polygon", orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}, orb.Point{1, 1}},
		{"line", orb.LineString{{0, 0}, {4, 0}}, orb.Point{2, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Anchor(tc.g); got != tc.want {
				t.Fatalf("anchor=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestReadCSV(t *testing.T) {
	in := "name,Latitude,lon,notes\nA,0.28,34.75,first\nB,bad,34.7,skip\nC,0.3,34.8\n"
	c, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Features) != 2 {
		t.Fatalf("features=%d", len(c.Features))
	}
	if p := c.Features[0].Geometry.(orb.Point); p != (orb.Point{34.75, 0.28}) {
		t.Fatalf("point=%v", p)
	}
	last := c.Features[1].Attrs
	if last[0].Value != "C" || !last[3].Null {
		t.Fatalf("attrs=%v", last)
	}
	if _, err := ReadCSV(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatal("expected error without coordinate columns")
	}
}

func TestParseKML(t *testing.T) {
	doc := `<?xml version="1.0"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>
  <Placemark id="p1"><name>Market</name><description>Old town</description>
    <ExtendedData><Data name="plot"><value>12</value></Data></ExtendedData>
    <Point><coordinates>34.75,0.28,0</coordinates></Point></Placemark>
  <Placemark><name>Road</name><LineString><coordinates>34.7,0.2 34.8,0.3</coordinates></LineString></Placemark>
  <Placemark><name>Empty</name></Placemark>
</Document></kml>`
	c, err := ParseKML([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Features) != 2 {
		t.Fatalf("features=%d", len(c.Features))
	}
	f := c.Features[0]
	if f.ID != "p1" || len(f.Attrs) != 3 || f.Attrs[2] != (Attr{Name: "plot", Value: "12"}) {
		t.Fatalf("feature=%+v", f)
	}
	if _, ok := c.Features[1].Geometry.(orb.LineString); !ok {
		t.Fatalf("geometry=%T", c.Features[1].Geometry)
	}
}

func TestParseKMLMultiGeometryInNestedFolders(t *testing.T) {
	doc := `<?xml version="1.0"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document><Folder><name>Wards</name><Folder><name>Shieywe</name>
  <Placemark id="parcel-9"><name>Parcel 9</name><MultiGeometry>
    <Polygon><outerBoundaryIs><LinearRing><coordinates>0,0 1,0 1,1 0,1 0,0</coordinates></LinearRing></outerBoundaryIs></Polygon>
    <Polygon><outerBoundaryIs><LinearRing><coordinates>2,2 3,2 3,3 2,3 2,2</coordinates></LinearRing></outerBoundaryIs></Polygon>
  </MultiGeometry></Placemark>
  <Placemark id="beacon"><MultiGeometry>
    <Point><coordinates>5,5</coordinates></Point>
    <LineString><coordinates>5,5 6,6</coordinates></LineString>
  </MultiGeometry></Placemark>
</Folder></Folder></Document></kml>`
	c, err := ParseKML([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Features) != 2 {
		t.Fatalf("features=%d", len(c.Features))
	}
	mp, ok := c.Features[0].Geometry.(orb.MultiPolygon)
	if !ok || len(mp) != 2 || c.Features[0].ID != "parcel-9" {
		t.Fatalf("feature 0 = %s %T", c.Features[0].ID, c.Features[0].Geometry)
	}
	if v, _ := c.Features[0].Value("name"); v != "Parcel 9" {
		t.Fatalf("name = %q", v)
	}
	mixed, ok := c.Features[1].Geometry.(orb.Collection)
	if !ok || len(mixed) != 2 {
		t.Fatalf("feature 1 = %T", c.Features[1].Geometry)
	}
	if _, _, polys := c.Counts(); polys != 1 {
		t.Fatalf("polys = %d", polys)
	}
}

func TestParseWKT(t *testing.T) {
	c, err := ParseWKT("POINT (34.75 0.28)")
	if err != nil {
		t.Fatal(err)
	}
	if p := c.Features[0].Geometry.(orb.Point); p != (orb.Point{34.75, 0.28}) {
		t.Fatalf("point=%v", p)
	}
	if _, err := ParseWKT("   "); err == nil {
		t.Fatal("expected error for empty wkt")
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "parcels.geojson")
	if err := os.WriteFile(p, []byte(parcels), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if pts, _, polys := c.Counts(); pts != 1 || polys != 1 {
		t.Fatalf("counts pts=%d polys=%d", pts, polys)
	}
	if _, err := Load(filepath.Join(dir, "x.shp")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err=%v, want ErrUnsupported", err)
	}
	if !Supported("a.KML") || Supported("a.shp") {
		t.Fatal("Supported mismatch")
	}
}

func TestValueAttr(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want Attr
	}{
		{nil, Attr{Name: "v", Null: true}},
		{"a", Attr{Name: "v", Value: "a"}},
		{[]byte("b"), Attr{Name: "v", Value: "b"}},
		{int64(42), Attr{Name: "v", Value: "42"}},
		{1.5, Attr{Name: "v", Value: "1.5"}},
		{true, Attr{Name: "v", Value: "true"}},
		{ts, Attr{Name: "v", Value: "2024-05-01T12:00:00Z"}},
		{decimalValue("123.45"), Attr{Name: "v", Value: "123.45"}},
		{decimalValue(""), Attr{Name: "v", Null: true}},
		{plotRef(7), Attr{Name: "v", Value: "plot-7"}},
		{jsonOnly{Area: 2}, Attr{Name: "v", Value: `{"area":2}`}},
		{[16]byte{0: 0xab, 15: 0x01}, Attr{Name: "v", Value: "ab000000-0000-0000-0000-000000000001"}},
	}
	for _, tc := range cases {
		if got := ValueAttr("v", tc.in); got != tc.want {
			t.Errorf("ValueAttr(%v)=%v, want %v", tc.in, got, tc.want)
		}
	}
}

type decimalValue string

func (d decimalValue) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

type plotRef int

func (p plotRef) String() string { return fmt.Sprintf("plot-%d", int(p)) }

type jsonOnly struct{ Area int }

func (j jsonOnly) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`{"area":%d}`, j.Area)), nil
}

func TestMatches(t *testing.T) {
	f := Feature{Attrs: []Attr{{Name: "name", Value: "Old Town"}, {Name: "x", Null: true}}}
	if !f.Matches("old") || f.Matches("new") || f.Matches("") {
		t.Fatal("Matches mismatch")
	}
}
