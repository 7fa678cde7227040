package mapview

// Control binds one UI action to one controller call. Hosts render the
// control and map their own input to it.
type Control struct {
	ID    string
	Label string
	Tip   string
	Keys  []string
	Do    func(*Controller)
}

func defaultControls() []Control {
	return []Control{
		{ID: "home", Label: "⌂", Tip: "Zoom to home", Keys: []string{"H", "home"}, Do: (*Controller).Home},
		{ID: "zoom-in", Label: "+", Tip: "Zoom in", Keys: []string{"+", "="}, Do: (*Controller).ZoomIn},
		{ID: "zoom-out", Label: "−", Tip: "Zoom out", Keys: []string{"-", "_"}, Do: (*Controller).ZoomOut},
		{ID: "fullscreen", Label: "⤢", Tip: "Toggle full-screen", Keys: []string{"f"}, Do: func(c *Controller) { c.ToggleFullscreen() }},
		{ID: "measure-length", Label: "📏", Tip: "Measure length", Keys: []string{"m"}, Do: func(c *Controller) { c.toggleMeasure(MeasureLength) }},
		{ID: "measure-area", Label: "▱", Tip: "Measure area", Keys: []string{"M"}, Do: func(c *Controller) { c.toggleMeasure(MeasureArea) }},
	}
}

func (c *Controller) toggleMeasure(mode MeasureMode) {
	if c.measure.Mode == mode {
		c.StopMeasure()
		return
	}
	c.StartMeasure(mode)
}

// Controls returns the map's controls.
func (c *Controller) Controls() []Control { return c.controls }

// Control looks a control up by ID.
func (c *Controller) Control(id string) (Control, bool) {
	for _, ct := range c.controls {
		if ct.ID == id {
			return ct, true
		}
	}
	return Control{}, false
}

// ControlForKey returns the control bound to a key.
func (c *Controller) ControlForKey(key string) (Control, bool) {
	for _, ct := range c.controls {
		for _, k := range ct.Keys {
			if k == key {
				return ct, true
			}
		}
	}
	return Control{}, false
}

// Trigger runs a control by ID.
func (c *Controller) Trigger(id string) bool {
	ct, ok := c.Control(id)
	if !ok {
		return false
	}
	ct.Do(c)
	return true
}
