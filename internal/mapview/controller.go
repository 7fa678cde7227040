package mapview

import (
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"

	"parcelmap/internal/geom"
)

// Options are the fixed settings a controller is built with. Coordinates are
// lon/lat.
type Options struct {
	Center       orb.Point
	Zoom         float64
	MinZoom      float64
	MaxZoom      float64
	HomeCenter   orb.Point
	HomeZoom     float64
	HomeDuration time.Duration
	ZoomDuration time.Duration
	// HitTolerance is the pick radius in pixels for points and lines.
	HitTolerance float64
	// Precision is the number of decimals of the mouse-position readout.
	Precision int
	Scale     ScaleOptions
}

// DefaultOptions returns the Kakamega view the map opens on.
func DefaultOptions() Options {
	return Options{
		Center:       orb.Point{34.75, 0.28},
		Zoom:         12,
		MinZoom:      0,
		MaxZoom:      28,
		HomeCenter:   orb.Point{34.75, 0.2833},
		HomeZoom:     14,
		HomeDuration: time.Second,
		ZoomDuration: 250 * time.Millisecond,
		HitTolerance: 3,
		Precision:    6,
		Scale:        ScaleOptions{Steps: 4, MinWidth: 140},
	}
}

// Observer is told about interaction events; metrics implement it.
type Observer interface {
	ObserveClick(hit bool)
	ObserveViewChange(op string)
}

type nopObserver struct{}

func (nopObserver) ObserveClick(bool)        {}
func (nopObserver) ObserveViewChange(string) {}

// Controller owns the view, the layers, the controls and the popup.
type Controller struct {
	opts       Options
	view       View
	viewport   Viewport
	layers     []*Layer
	popup      Popup
	controls   []Control
	measure    Measure
	fullscreen bool
	transition Transition
	observer   Observer
}

// New builds a controller. Layers are kept in the given order; draw order is
// by ZIndex with ties in that order.
func New(opts Options, layers ...*Layer) *Controller {
	if opts.MaxZoom <= opts.MinZoom {
		opts.MaxZoom = 28
	}
	if opts.Precision < 0 {
		opts.Precision = 0
	}
	c := &Controller{
		opts:     opts,
		layers:   layers,
		observer: nopObserver{},
	}
	c.view = View{Center: FromLonLat(opts.Center), Zoom: c.clampZoom(opts.Zoom)}
	c.transition = Transition{From: c.view, To: c.view}
	c.controls = defaultControls()
	return c
}

// SetObserver installs an event observer; nil restores the no-op one.
func (c *Controller) SetObserver(o Observer) {
	if o == nil {
		o = nopObserver{}
	}
	c.observer = o
}

// Options returns the settings the controller was built with.
func (c *Controller) Options() Options { return c.opts }

// View returns the current view state.
func (c *Controller) View() View { return c.view }

// Viewport returns the canvas size.
func (c *Controller) Viewport() Viewport { return c.viewport }

// Frame combines the current view and viewport.
func (c *Controller) Frame() Frame { return Frame{View: c.view, Viewport: c.viewport} }

// Popup returns the popup overlay.
func (c *Controller) Popup() *Popup { return &c.popup }

// Transition returns the animation recorded by the last view change.
func (c *Controller) Transition() Transition { return c.transition }

// Fullscreen reports the fullscreen toggle.
func (c *Controller) Fullscreen() bool { return c.fullscreen }

// Resize sets the canvas size in pixels.
func (c *Controller) Resize(w, h int) {
	c.viewport = Viewport{Width: max(0, w), Height: max(0, h)}
}

// Click hit-tests the visible interactive layers at p. The first feature
// found is shown in the popup at its anchor; no feature hides the popup.
func (c *Controller) Click(p Pixel) (Hit, bool) {
	c.popup.Hide()
	hit, ok := c.FeatureAtPixel(p)
	c.observer.ObserveClick(ok)
	if !ok {
		return Hit{}, false
	}
	c.show(hit)
	return hit, true
}

func (c *Controller) show(h Hit) {
	at := FromLonLat(geom.Anchor(h.Feature.Geometry))
	c.popup.Show(at, h.Layer.ID, h.Feature.ID, h.Feature.Properties(h.Layer.GeometryName))
}

// ClosePopup hides the popup.
func (c *Controller) ClosePopup() { c.popup.Hide() }

// SetView jumps to a view without animation.
func (c *Controller) SetView(v View) {
	v.Zoom = c.clampZoom(v.Zoom)
	c.transition = Transition{From: v, To: v}
	c.view = v
}

// animate moves to v and records a transition of duration d.
func (c *Controller) animate(op string, v View, d time.Duration) {
	v.Zoom = c.clampZoom(v.Zoom)
	c.transition = Transition{From: c.view, To: v, Duration: d}
	c.view = v
	c.observer.ObserveViewChange(op)
}

// Home recenters on the configured home coordinate and zoom, whatever the
// current view.
func (c *Controller) Home() {
	c.animate("home", View{Center: FromLonLat(c.opts.HomeCenter), Zoom: c.opts.HomeZoom}, c.opts.HomeDuration)
}

// ZoomIn raises the zoom level by one.
func (c *Controller) ZoomIn() { c.ZoomBy(1) }

// ZoomOut lowers the zoom level by one.
func (c *Controller) ZoomOut() { c.ZoomBy(-1) }

// ZoomBy changes the zoom level by delta, keeping the center.
func (c *Controller) ZoomBy(delta float64) {
	op := "zoom_in"
	if delta < 0 {
		op = "zoom_out"
	}
	c.animate(op, View{Center: c.view.Center, Zoom: c.view.Zoom + delta}, c.opts.ZoomDuration)
}

// Pan shifts the view by a pixel delta; positive dx moves the map content left.
func (c *Controller) Pan(dx, dy float64) {
	res := c.view.Resolution()
	v := View{
		Center: orb.Point{c.view.Center[0] + dx*res, c.view.Center[1] - dy*res},
		Zoom:   c.view.Zoom,
	}
	c.transition = Transition{From: v, To: v}
	c.view = v
	c.observer.ObserveViewChange("pan")
}

// CenterOn animates the view onto a lon/lat coordinate at the given zoom.
func (c *Controller) CenterOn(ll orb.Point, zoom float64) {
	c.animate("center", View{Center: FromLonLat(ll), Zoom: zoom}, c.opts.ZoomDuration)
}

// Fit frames a lon/lat bound in the viewport. A degenerate bound, or an
// empty viewport, centers on it at the home zoom.
func (c *Controller) Fit(b orb.Bound) {
	pb := orb.Bound{Min: FromLonLat(b.Min), Max: FromLonLat(b.Max)}
	zoom := c.opts.HomeZoom
	w, h := pb.Right()-pb.Left(), pb.Top()-pb.Bottom()
	if !c.viewport.Empty() && (w > 0 || h > 0) {
		// 10% margin
		res := 1.1 * math.Max(w/float64(c.viewport.Width), h/float64(c.viewport.Height))
		zoom = math.Log2(2 * math.Pi * orb.EarthRadius / (TileSize * res))
	}
	c.animate("fit", View{Center: pb.Center(), Zoom: zoom}, c.opts.ZoomDuration)
}

// ToggleFullscreen flips fullscreen mode.
func (c *Controller) ToggleFullscreen() bool {
	c.fullscreen = !c.fullscreen
	return c.fullscreen
}

// Pointer formats the lon/lat under p as "x, y"; empty outside the canvas.
func (c *Controller) Pointer(p Pixel) string {
	ll, ok := c.PointerLonLat(p)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%.*f, %.*f", c.opts.Precision, ll[0], c.opts.Precision, ll[1])
}

// PointerLonLat returns the lon/lat under p.
func (c *Controller) PointerLonLat(p Pixel) (orb.Point, bool) {
	f := c.Frame()
	if f.Empty() || !f.Contains(p) {
		return orb.Point{}, false
	}
	return ToLonLat(f.CoordAt(p)), true
}

// TileAt returns the web mercator tile under p at the nearest integer zoom.
func (c *Controller) TileAt(p Pixel) (maptile.Tile, bool) {
	ll, ok := c.PointerLonLat(p)
	if !ok {
		return maptile.Tile{}, false
	}
	z := math.Round(c.view.Zoom)
	z = math.Max(0, math.Min(z, 30))
	return maptile.At(ll, maptile.Zoom(z)), true
}

func (c *Controller) clampZoom(z float64) float64 {
	return math.Max(c.opts.MinZoom, math.Min(c.opts.MaxZoom, z))
}
