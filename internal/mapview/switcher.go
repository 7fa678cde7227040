package mapview

import "fmt"

// Layers returns the layer stack in draw order.
func (c *Controller) Layers() []*Layer {
	return drawOrder(c.layers)
}

// Layer looks a layer up by ID.
func (c *Controller) Layer(id string) (*Layer, bool) {
	for _, l := range c.layers {
		if l.ID == id {
			return l, true
		}
	}
	return nil, false
}

// AddLayer appends a layer, replacing one with the same ID in place.
func (c *Controller) AddLayer(l *Layer) {
	for i, old := range c.layers {
		if old.ID == l.ID {
			c.layers[i] = l
			c.dropPopupFrom(l.ID)
			return
		}
	}
	c.layers = append(c.layers, l)
}

// SetLayerVisible shows or hides a layer. Hiding the layer whose feature is
// in the popup closes the popup.
func (c *Controller) SetLayerVisible(id string, visible bool) error {
	l, ok := c.Layer(id)
	if !ok {
		return fmt.Errorf("layer %q not found", id)
	}
	l.Visible = visible
	if !visible {
		c.dropPopupFrom(id)
	}
	return nil
}

// ToggleLayer flips a layer's visibility and returns the new state.
func (c *Controller) ToggleLayer(id string) (bool, error) {
	l, ok := c.Layer(id)
	if !ok {
		return false, fmt.Errorf("layer %q not found", id)
	}
	return !l.Visible, c.SetLayerVisible(id, !l.Visible)
}

func (c *Controller) dropPopupFrom(layerID string) {
	if lid, _ := c.popup.Feature(); c.popup.Visible() && lid == layerID {
		c.popup.Hide()
	}
}
