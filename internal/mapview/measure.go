package mapview

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// MeasureMode selects the active measuring tool.
type MeasureMode int

const (
	MeasureOff MeasureMode = iota
	MeasureLength
	MeasureArea
)

func (m MeasureMode) String() string {
	switch m {
	case MeasureLength:
		return "length"
	case MeasureArea:
		return "area"
	}
	return "off"
}

// Measure collects lon/lat vertices for a length or area measurement.
type Measure struct {
	Mode   MeasureMode
	Points []orb.Point
}

// Active reports whether a tool is selected.
func (m Measure) Active() bool { return m.Mode != MeasureOff }

// Geometry is the sketch in lon/lat: a line for length, a closed ring
// polygon for area.
func (m Measure) Geometry() orb.Geometry {
	switch m.Mode {
	case MeasureLength:
		return orb.LineString(m.Points)
	case MeasureArea:
		if len(m.Points) < 3 {
			return orb.LineString(m.Points)
		}
		ring := make(orb.Ring, 0, len(m.Points)+1)
		ring = append(ring, m.Points...)
		ring = append(ring, m.Points[0])
		return orb.Polygon{ring}
	}
	return nil
}

// Value is the geodesic length in metres or area in square metres.
func (m Measure) Value() float64 {
	switch m.Mode {
	case MeasureLength:
		if len(m.Points) < 2 {
			return 0
		}
		return geo.Length(orb.LineString(m.Points))
	case MeasureArea:
		if len(m.Points) < 3 {
			return 0
		}
		a := geo.Area(m.Geometry())
		if a < 0 {
			a = -a
		}
		return a
	}
	return 0
}

// Format renders the value in metric units.
func (m Measure) Format() string {
	v := m.Value()
	switch m.Mode {
	case MeasureLength:
		if v > 100 {
			return fmt.Sprintf("%.2f km", v/1000)
		}
		return fmt.Sprintf("%.2f m", v)
	case MeasureArea:
		if v > 10000 {
			return fmt.Sprintf("%.2f km²", v/1e6)
		}
		return fmt.Sprintf("%.2f m²", v)
	}
	return ""
}

// StartMeasure selects a tool and clears the sketch.
func (c *Controller) StartMeasure(mode MeasureMode) {
	c.measure = Measure{Mode: mode}
}

// StopMeasure deselects the tool.
func (c *Controller) StopMeasure() {
	c.measure = Measure{}
}

// Measure returns the active sketch.
func (c *Controller) Measure() Measure { return c.measure }

// MeasureAt adds the coordinate under p to the sketch. It reports false when
// no tool is active or p is off the canvas.
func (c *Controller) MeasureAt(p Pixel) bool {
	if !c.measure.Active() {
		return false
	}
	ll, ok := c.PointerLonLat(p)
	if !ok {
		return false
	}
	c.measure.Points = append(c.measure.Points, ll)
	return true
}
