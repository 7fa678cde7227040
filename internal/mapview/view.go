// Package mapview is the map interaction controller: it owns the view, the
// ordered layer set, the controls and the single popup overlay, and turns
// pointer events into view and popup changes.
//
// A Controller is not safe for concurrent use. Hosts call it from one event
// loop.
package mapview

import (
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// TileSize is the pixel size of a web mercator tile.
const TileSize = 256

// View is the projected (EPSG:3857) map center and the zoom level.
type View struct {
	Center orb.Point
	Zoom   float64
}

// Resolution is metres per pixel at the view's zoom.
func (v View) Resolution() float64 {
	return 2 * math.Pi * orb.EarthRadius / (TileSize * math.Exp2(v.Zoom))
}

// LonLat returns the center in EPSG:4326.
func (v View) LonLat() orb.Point {
	return project.Mercator.ToWGS84(v.Center)
}

// FromLonLat projects a lon/lat coordinate into view space.
func FromLonLat(p orb.Point) orb.Point {
	return project.WGS84.ToMercator(p)
}

// ToLonLat unprojects a view coordinate.
func ToLonLat(p orb.Point) orb.Point {
	return project.Mercator.ToWGS84(p)
}

// Pixel is a screen position relative to the map canvas' top-left corner.
type Pixel struct {
	X, Y float64
}

// Viewport is the canvas size in pixels.
type Viewport struct {
	Width, Height int
}

// Contains reports whether p lies on the canvas.
func (vp Viewport) Contains(p Pixel) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < float64(vp.Width) && p.Y < float64(vp.Height)
}

// Empty reports a canvas with no area.
func (vp Viewport) Empty() bool {
	return vp.Width <= 0 || vp.Height <= 0
}

// Frame is a view rendered into a viewport; it converts between pixels and
// coordinates.
type Frame struct {
	View
	Viewport
}

// CoordAt returns the projected coordinate under a pixel.
func (f Frame) CoordAt(p Pixel) orb.Point {
	res := f.Resolution()
	return orb.Point{
		f.Center[0] + (p.X-float64(f.Width)/2)*res,
		f.Center[1] + (float64(f.Height)/2-p.Y)*res,
	}
}

// PixelAt returns the pixel a projected coordinate falls on.
func (f Frame) PixelAt(c orb.Point) Pixel {
	res := f.Resolution()
	return Pixel{
		X: float64(f.Width)/2 + (c[0]-f.Center[0])/res,
		Y: float64(f.Height)/2 - (c[1]-f.Center[1])/res,
	}
}

// Extent is the projected bound covered by the frame.
func (f Frame) Extent() orb.Bound {
	return orb.Bound{
		Min: f.CoordAt(Pixel{0, float64(f.Height)}),
		Max: f.CoordAt(Pixel{float64(f.Width), 0}),
	}
}

// Transition animates the view from one state to another. The controller
// applies To immediately; hosts use At to draw intermediate frames.
type Transition struct {
	From     View
	To       View
	Duration time.Duration
}

// At interpolates the view after elapsed time.
func (t Transition) At(elapsed time.Duration) View {
	if t.Duration <= 0 || elapsed >= t.Duration {
		return t.To
	}
	if elapsed <= 0 {
		return t.From
	}
	k := float64(elapsed) / float64(t.Duration)
	// ease-out
	k = 1 - (1-k)*(1-k)
	return View{
		Center: orb.Point{
			t.From.Center[0] + (t.To.Center[0]-t.From.Center[0])*k,
			t.From.Center[1] + (t.To.Center[1]-t.From.Center[1])*k,
		},
		Zoom: t.From.Zoom + (t.To.Zoom-t.From.Zoom)*k,
	}
}

// Done reports whether the animation has finished after elapsed time.
func (t Transition) Done(elapsed time.Duration) bool {
	return elapsed >= t.Duration
}
