package mapview

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"parcelmap/internal/geom"
)

var (
	centerLL = orb.Point{34.75, 0.28}
	parcelLL = orb.Polygon{{{34.70, 0.25}, {34.72, 0.25}, {34.72, 0.27}, {34.70, 0.27}, {34.70, 0.25}}}
)

func marketFeature() geom.Feature {
	return geom.Feature{
		ID:       "market",
		Geometry: centerLL,
		Attrs: []geom.Attr{
			{Name: "name", Value: "Market"},
			{Name: "geometry", Value: "POINT"},
			{Name: "area", Null: true},
			{Name: "plot", Value: "12"},
		},
	}
}

func parcelFeature() geom.Feature {
	return geom.Feature{
		ID:       "parcel-7",
		Geometry: parcelLL,
		Attrs: []geom.Attr{
			{Name: "parcel_no", Value: "KAK/7"},
			{Name: "zone", Value: "Old Town"},
		},
	}
}

func newTestController(layers ...*Layer) *Controller {
	if len(layers) == 0 {
		layers = []*Layer{
			{ID: "osm", Title: "OSM", Kind: KindOSM, Visible: true},
			NewVectorLayer("parcels", "Parcels", []geom.Feature{marketFeature(), parcelFeature()}),
		}
	}
	c := New(DefaultOptions(), layers...)
	c.Resize(800, 600)
	return c
}

func pixelOf(c *Controller, ll orb.Point) Pixel {
	return c.Frame().PixelAt(FromLonLat(ll))
}

func near(a, b orb.Point) bool {
	return math.Abs(a[0]-b[0]) < 1e-6 && math.Abs(a[1]-b[1]) < 1e-6
}

func TestClickEmptyPixelHidesPopup(t *testing.T) {
	c := newTestController()
	c.Click(Pixel{400, 300})
	if !c.Popup().Visible() {
		t.Fatal("expected popup after clicking the market")
	}
	if _, ok := c.Click(Pixel{10, 10}); ok {
		t.Fatal("expected no hit")
	}
	if c.Popup().Visible() {
		t.Fatal("popup should be hidden")
	}
	if _, ok := c.Popup().Position(); ok {
		t.Fatal("hidden popup must have no position")
	}
	if len(c.Popup().Lines()) != 0 {
		t.Fatalf("hidden popup kept content: %v", c.Popup().Lines())
	}
}

func TestClickShowsAttributesInOrderAtAnchor(t *testing.T) {
	c := newTestController()
	hit, ok := c.Click(Pixel{400, 300})
	if !ok || hit.Feature.ID != "market" {
		t.Fatalf("hit=%+v ok=%v", hit, ok)
	}
	pos, visible := c.Popup().Position()
	if !visible || !near(pos, FromLonLat(centerLL)) {
		t.Fatalf("position=%v visible=%v", pos, visible)
	}
	if got := c.Popup().Text(); got != "name: Market\nplot: 12" {
		t.Fatalf("content=%q", got)
	}
}

func TestClickPolygonAnchorsAtCentroid(t *testing.T) {
	c := newTestController()
	p := pixelOf(c, orb.Point{34.705, 0.255})
	hit, ok := c.Click(p)
	if !ok || hit.Feature.ID != "parcel-7" {
		t.Fatalf("hit=%+v ok=%v", hit, ok)
	}
	pos, _ := c.Popup().Position()
	if !near(ToLonLat(pos), orb.Point{34.71, 0.26}) {
		t.Fatalf("anchor=%v", ToLonLat(pos))
	}
	want := []string{"parcel_no: KAK/7", "zone: Old Town"}
	if got := c.Popup().Lines(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("lines=%v", got)
	}
}

func TestClickIsIdempotent(t *testing.T) {
	c := newTestController()
	c.Click(Pixel{400, 300})
	pos1, _ := c.Popup().Position()
	text1 := c.Popup().Text()
	c.Click(Pixel{400, 300})
	pos2, _ := c.Popup().Position()
	if pos1 != pos2 || text1 != c.Popup().Text() {
		t.Fatalf("second click changed popup: %v %q vs %v %q", pos1, text1, pos2, c.Popup().Text())
	}
}

func TestClickSecondFeatureReplacesFirst(t *testing.T) {
	c := newTestController()
	c.Click(Pixel{400, 300})
	c.Click(pixelOf(c, orb.Point{34.71, 0.26}))
	text := c.Popup().Text()
	if strings.Contains(text, "Market") || strings.Contains(text, "plot") {
		t.Fatalf("popup still shows first feature: %q", text)
	}
	if _, fid := c.Popup().Feature(); fid != "parcel-7" {
		t.Fatalf("feature=%q", fid)
	}
}

func TestHitToleranceForPoints(t *testing.T) {
	c := newTestController()
	if _, ok := c.Click(Pixel{402, 300}); !ok {
		t.Fatal("2px away should hit with 3px tolerance")
	}
	if _, ok := c.Click(Pixel{406, 300}); ok {
		t.Fatal("6px away should miss")
	}
}

func TestFirstLayerInDrawOrderWins(t *testing.T) {
	top := NewVectorLayer("top", "Top", []geom.Feature{{ID: "a", Geometry: centerLL, Attrs: []geom.Attr{{Name: "layer", Value: "top"}}}})
	top.ZIndex = 5
	bottom := NewVectorLayer("bottom", "Bottom", []geom.Feature{{ID: "b", Geometry: centerLL, Attrs: []geom.Attr{{Name: "layer", Value: "bottom"}}}})
	c := newTestController(top, bottom)

	hit, ok := c.Click(Pixel{400, 300})
	if !ok || hit.Layer.ID != "bottom" {
		t.Fatalf("hit layer=%v, want bottom (lower zIndex draws first)", hit.Layer)
	}

	var seen []string
	c.FeaturesAtPixel(Pixel{400, 300}, func(h Hit) bool {
		seen = append(seen, h.Layer.ID)
		return true
	})
	if strings.Join(seen, ",") != "bottom,top" {
		t.Fatalf("visit order=%v", seen)
	}
}

func TestHiddenLayerIsNotHitTested(t *testing.T) {
	c := newTestController()
	c.Click(Pixel{400, 300})
	if err := c.SetLayerVisible("parcels", false); err != nil {
		t.Fatal(err)
	}
	if c.Popup().Visible() {
		t.Fatal("hiding the popup's layer should close it")
	}
	if _, ok := c.Click(Pixel{400, 300}); ok {
		t.Fatal("hidden layer was hit")
	}
	if err := c.SetLayerVisible("nope", true); err == nil {
		t.Fatal("expected error for unknown layer")
	}
}

func TestZeroViewportNeverHits(t *testing.T) {
	c := New(DefaultOptions(), NewVectorLayer("p", "P", []geom.Feature{marketFeature()}))
	if _, ok := c.Click(Pixel{0, 0}); ok {
		t.Fatal("hit on empty viewport")
	}
	if got := c.Pointer(Pixel{0, 0}); got != "" {
		t.Fatalf("pointer=%q", got)
	}
}

func TestHomeIgnoresPriorView(t *testing.T) {
	c := newTestController()
	c.Pan(250, -120)
	c.ZoomIn()
	c.ZoomIn()
	c.Home()
	v := c.View()
	if !near(v.Center, FromLonLat(orb.Point{34.75, 0.2833})) || v.Zoom != 14 {
		t.Fatalf("view=%+v", v)
	}
	c.SetView(View{Center: orb.Point{1e6, -1e6}, Zoom: 3})
	c.Home()
	if v2 := c.View(); v2 != v {
		t.Fatalf("home not fixed: %+v vs %+v", v2, v)
	}
	if tr := c.Transition(); tr.Duration != time.Second || tr.To != v {
		t.Fatalf("transition=%+v", tr)
	}
}

func TestZoomStepsByOne(t *testing.T) {
	c := newTestController()
	c.ZoomIn()
	if z := c.View().Zoom; z != 13 {
		t.Fatalf("zoom in: %v", z)
	}
	c.SetView(View{Center: c.View().Center, Zoom: 12})
	c.ZoomOut()
	if z := c.View().Zoom; z != 11 {
		t.Fatalf("zoom out: %v", z)
	}
	c.SetView(View{Center: c.View().Center, Zoom: 12.4})
	c.ZoomIn()
	if z := c.View().Zoom; math.Abs(z-13.4) > 1e-9 {
		t.Fatalf("fractional zoom in: %v", z)
	}
}

func TestZoomIsClamped(t *testing.T) {
	c := newTestController()
	c.SetView(View{Zoom: 0})
	c.ZoomOut()
	if z := c.View().Zoom; z != 0 {
		t.Fatalf("zoom=%v", z)
	}
}

func TestPointerReadout(t *testing.T) {
	c := newTestController()
	if got := c.Pointer(Pixel{400, 300}); got != "34.750000, 0.280000" {
		t.Fatalf("pointer=%q", got)
	}
	if got := c.Pointer(Pixel{-1, 300}); got != "" {
		t.Fatalf("outside pointer=%q", got)
	}
}

func TestTransitionInterpolates(t *testing.T) {
	tr := Transition{
		From:     View{Center: orb.Point{0, 0}, Zoom: 10},
		To:       View{Center: orb.Point{100, 100}, Zoom: 12},
		Duration: time.Second,
	}
	if v := tr.At(0); v != tr.From {
		t.Fatalf("start=%+v", v)
	}
	if v := tr.At(2 * time.Second); v != tr.To {
		t.Fatalf("end=%+v", v)
	}
	mid := tr.At(500 * time.Millisecond)
	if mid.Zoom <= 10 || mid.Zoom >= 12 || mid.Center[0] <= 0 || mid.Center[0] >= 100 {
		t.Fatalf("mid=%+v", mid)
	}
	if tr.Done(time.Millisecond) || !tr.Done(time.Second) {
		t.Fatal("Done mismatch")
	}
}

func TestMeasure(t *testing.T) {
	c := newTestController()
	if c.MeasureAt(Pixel{1, 1}) {
		t.Fatal("measured without a tool")
	}
	c.Trigger("measure-length")
	c.MeasureAt(Pixel{100, 300})
	c.MeasureAt(Pixel{400, 300})
	short := c.Measure().Value()
	c.MeasureAt(Pixel{400, 100})
	long := c.Measure().Value()
	if short <= 0 || long <= short {
		t.Fatalf("lengths short=%v long=%v", short, long)
	}
	if !strings.HasSuffix(c.Measure().Format(), "km") {
		t.Fatalf("format=%q", c.Measure().Format())
	}

	c.Trigger("measure-area")
	for _, p := range []Pixel{{100, 100}, {300, 100}, {300, 300}, {100, 300}} {
		c.MeasureAt(p)
	}
	if a := c.Measure().Value(); a <= 0 {
		t.Fatalf("area=%v", a)
	}
	c.Trigger("measure-area")
	if c.Measure().Active() {
		t.Fatal("second trigger should switch the tool off")
	}
}

func TestSearchCentersAndShowsPopup(t *testing.T) {
	c := newTestController()
	hit, ok := c.Search("old town")
	if !ok || hit.Feature.ID != "parcel-7" {
		t.Fatalf("hit=%+v ok=%v", hit, ok)
	}
	if !near(ToLonLat(c.View().Center), orb.Point{34.71, 0.26}) {
		t.Fatalf("center=%v", ToLonLat(c.View().Center))
	}
	if c.View().Zoom != 14 {
		t.Fatalf("zoom=%v", c.View().Zoom)
	}
	if !c.Popup().Visible() {
		t.Fatal("popup hidden after search")
	}
	before := c.View()
	if _, ok := c.Search("no such parcel"); ok {
		t.Fatal("unexpected match")
	}
	if c.View() != before || !c.Popup().Visible() {
		t.Fatal("failed search changed state")
	}
}

func TestScaleLine(t *testing.T) {
	c := newTestController()
	s := c.ScaleLine()
	if s.Width < 140 || s.Steps != 4 || s.Label == "" || !s.Bar || !s.Text {
		t.Fatalf("scale=%+v", s)
	}
	c.ZoomIn()
	if s2 := c.ScaleLine(); s2.Meters > s.Meters {
		t.Fatalf("zooming in grew the scale: %v > %v", s2.Meters, s.Meters)
	}
}

func TestControlsByKey(t *testing.T) {
	c := newTestController()
	ct, ok := c.ControlForKey("+")
	if !ok || ct.ID != "zoom-in" {
		t.Fatalf("control=%+v", ct)
	}
	ct.Do(c)
	if c.View().Zoom != 13 {
		t.Fatalf("zoom=%v", c.View().Zoom)
	}
	c.Trigger("fullscreen")
	if !c.Fullscreen() {
		t.Fatal("fullscreen not toggled")
	}
}

func TestTileURL(t *testing.T) {
	osm := &Layer{Kind: KindOSM}
	u, ok := osm.TileURL(maptile.New(1, 2, 3))
	if !ok || u != "https://tile.openstreetmap.org/3/1/2.png" {
		t.Fatalf("url=%q", u)
	}
	wms := &Layer{Kind: KindWMS, WMS: WMS{URL: "http://localhost:8080/geoserver/wms", Layers: "a:b", Tiled: true}}
	if _, ok := wms.TileURL(maptile.New(0, 0, 0)); ok {
		t.Fatal("wms has no tile template")
	}
	if !strings.Contains(wms.Source(), "LAYERS=a:b") {
		t.Fatalf("source=%q", wms.Source())
	}
}

type countingObserver struct{ hits, misses, views int }

func (o *countingObserver) ObserveClick(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}
func (o *countingObserver) ObserveViewChange(string) { o.views++ }

func TestObserver(t *testing.T) {
	c := newTestController()
	o := &countingObserver{}
	c.SetObserver(o)
	c.Click(Pixel{400, 300})
	c.Click(Pixel{5, 5})
	c.Home()
	if o.hits != 1 || o.misses != 1 || o.views != 1 {
		t.Fatalf("observer=%+v", o)
	}
}

func TestFitFramesBound(t *testing.T) {
	c := newTestController()
	b := parcelLL.Bound()
	c.Fit(b)
	for _, ll := range []orb.Point{b.Min, b.Max} {
		p := pixelOf(c, ll)
		if !c.Viewport().Contains(p) {
			t.Fatalf("corner %v at %v outside viewport", ll, p)
		}
	}
	if !near(ToLonLat(c.View().Center), orb.Point{34.71, 0.26}) {
		t.Fatalf("center=%v", ToLonLat(c.View().Center))
	}

	c.Fit(orb.Bound{Min: centerLL, Max: centerLL})
	if c.View().Zoom != c.Options().HomeZoom {
		t.Fatalf("point fit zoom=%v", c.View().Zoom)
	}
}

func TestSelect(t *testing.T) {
	c := newTestController()
	hit, ok := c.Select("parcels", 0)
	if !ok || hit.Feature.ID != "market" {
		t.Fatalf("hit=%+v ok=%v", hit, ok)
	}
	if _, fid := c.Popup().Feature(); fid != "market" {
		t.Fatalf("popup feature=%q", fid)
	}
	if _, ok := c.Select("parcels", 5); ok {
		t.Fatal("out of range index selected")
	}
	if _, ok := c.Select("osm", 0); ok {
		t.Fatal("base layer selected")
	}
}
