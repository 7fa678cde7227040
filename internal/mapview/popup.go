package mapview

import (
	"strings"

	"github.com/paulmach/orb"

	"parcelmap/internal/geom"
)

// Popup is the overlay that shows one feature's attributes. It is visible
// exactly when it has a position.
type Popup struct {
	pos     orb.Point
	visible bool

	layerID   string
	featureID string
	attrs     []geom.Attr
}

// Show moves the popup to at and replaces its content.
func (p *Popup) Show(at orb.Point, layerID, featureID string, attrs []geom.Attr) {
	p.pos = at
	p.visible = true
	p.layerID = layerID
	p.featureID = featureID
	p.attrs = attrs
}

// Hide clears the position. Content is dropped with it.
func (p *Popup) Hide() {
	*p = Popup{}
}

// Visible reports whether the popup has a position.
func (p *Popup) Visible() bool { return p.visible }

// Position returns the projected anchor coordinate.
func (p *Popup) Position() (orb.Point, bool) { return p.pos, p.visible }

// Feature identifies the feature on display.
func (p *Popup) Feature() (layerID, featureID string) { return p.layerID, p.featureID }

// Attrs returns the attributes on display, in order.
func (p *Popup) Attrs() []geom.Attr { return p.attrs }

// Lines renders the content as "name: value" lines.
func (p *Popup) Lines() []string {
	out := make([]string, len(p.attrs))
	for i, a := range p.attrs {
		out[i] = a.Name + ": " + a.Value
	}
	return out
}

// Text is Lines joined by newlines.
func (p *Popup) Text() string {
	return strings.Join(p.Lines(), "\n")
}
