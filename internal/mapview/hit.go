package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"parcelmap/internal/geom"
)

// Hit is a feature found under a pixel.
type Hit struct {
	Layer   *Layer
	Index   int
	Feature geom.Feature
}

// FeaturesAtPixel calls fn for every feature under p, visiting visible
// interactive layers in draw order and features in source order, until fn
// returns false.
func (c *Controller) FeaturesAtPixel(p Pixel, fn func(Hit) bool) {
	f := c.Frame()
	if f.Empty() || !f.Contains(p) {
		return
	}
	at := f.CoordAt(p)
	tol := c.opts.HitTolerance * f.Resolution()
	for _, l := range drawOrder(c.layers) {
		if !l.Visible || !l.Interactive() {
			continue
		}
		if !l.bound.Pad(tol).Contains(at) {
			continue
		}
		for i, g := range l.projected {
			if g == nil || !covers(g, at, tol) {
				continue
			}
			if !fn(Hit{Layer: l, Index: i, Feature: l.features[i]}) {
				return
			}
		}
	}
}

// FeatureAtPixel returns the first feature under p. The first one found
// wins, not the nearest.
func (c *Controller) FeatureAtPixel(p Pixel) (Hit, bool) {
	var (
		hit   Hit
		found bool
	)
	c.FeaturesAtPixel(p, func(h Hit) bool {
		hit, found = h, true
		return false
	})
	return hit, found
}

// covers reports whether at lies inside an areal geometry or within tol
// of any geometry.
func covers(g orb.Geometry, at orb.Point, tol float64) bool {
	if !g.Bound().Pad(tol).Contains(at) {
		return false
	}
	switch g := g.(type) {
	case orb.Polygon:
		if planar.PolygonContains(g, at) {
			return true
		}
	case orb.MultiPolygon:
		if planar.MultiPolygonContains(g, at) {
			return true
		}
	case orb.Ring:
		if planar.RingContains(g, at) {
			return true
		}
	case orb.Bound:
		return true
	case orb.Collection:
		for _, sub := range g {
			if covers(sub, at, tol) {
				return true
			}
		}
		return false
	}
	return planar.DistanceFrom(g, at) <= tol
}
