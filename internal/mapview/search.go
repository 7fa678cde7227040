package mapview

import (
	"math"

	"parcelmap/internal/geom"
)

// Search finds the first feature, in draw order, with an attribute value
// containing q. The view is centered on it and its popup is shown. Without a
// match nothing changes.
func (c *Controller) Search(q string) (Hit, bool) {
	for _, l := range drawOrder(c.layers) {
		if !l.Visible || !l.Interactive() {
			continue
		}
		for i, f := range l.features {
			if f.Geometry == nil || !f.Matches(q) {
				continue
			}
			hit := Hit{Layer: l, Index: i, Feature: f}
			c.focus(hit)
			return hit, true
		}
	}
	return Hit{}, false
}

// Select centers the view on feature i of a layer and shows its popup.
func (c *Controller) Select(layerID string, i int) (Hit, bool) {
	l, ok := c.Layer(layerID)
	if !ok || i < 0 || i >= len(l.features) || l.features[i].Geometry == nil {
		return Hit{}, false
	}
	hit := Hit{Layer: l, Index: i, Feature: l.features[i]}
	c.focus(hit)
	return hit, true
}

func (c *Controller) focus(h Hit) {
	c.CenterOn(geom.Anchor(h.Feature.Geometry), math.Max(c.view.Zoom, c.opts.HomeZoom))
	c.show(h)
}
