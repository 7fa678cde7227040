package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"

	"parcelmap/internal/mapview"
)

// frame is the drawing frame for a w x h cell canvas.
func (m Model) frame(w, h int) mapview.Frame {
	return mapview.Frame{
		View:     m.drawView(),
		Viewport: mapview.Viewport{Width: w * 2, Height: h * 4},
	}
}

// renderMap draws the visible vector layers, the measure sketch, and the
// popup anchored at its feature.
func (m Model) renderMap(w, h int) string {
	f := m.frame(w, h)
	br := newBrailleBuf(w, h)
	ext := f.Extent().Pad(f.Resolution() * 4)

	pop := m.ctl.Popup()
	selLayer, selFeature := pop.Feature()
	for _, l := range m.ctl.Layers() {
		if !l.Visible || !l.Interactive() {
			continue
		}
		for i, feat := range l.Features() {
			g := l.Projected(i)
			if g == nil || !g.Bound().Intersects(ext) {
				continue
			}
			// clip works in place
			g = clip.Geometry(ext, orb.Clone(g))
			if g == nil {
				continue
			}
			selected := pop.Visible() && l.ID == selLayer && feat.ID == selFeature
			br.drawGeometry(f, g, selected)
		}
	}

	if ms := m.ctl.Measure(); ms.Active() && len(ms.Points) > 0 {
		drawSketch(br, f, ext, ms)
	}

	lines := br.toLines()
	if pos, ok := pop.Position(); ok {
		lines = overlayPopup(lines, f, pos, pop.Text(), w, h)
	}
	return strings.Join(lines, "\n")
}

// drawSketch draws the measure sketch clipped to ext, with a marker on
// every vertex inside it.
func drawSketch(br *brailleBuf, f mapview.Frame, ext orb.Bound, ms mapview.Measure) {
	pts := make([]orb.Point, len(ms.Points))
	for i, p := range ms.Points {
		pts[i] = mapview.FromLonLat(p)
	}
	var g orb.Geometry = orb.LineString(pts)
	if ms.Mode == mapview.MeasureArea && len(pts) > 2 {
		ring := append(orb.Ring(pts), pts[0])
		g = orb.Polygon{ring}
	}
	if len(pts) > 1 {
		if g = clip.Geometry(ext, g); g != nil {
			br.drawGeometry(f, g, false)
		}
	}
	for _, p := range pts {
		if ext.Contains(p) {
			br.drawMarker(f, p)
		}
	}
}

// overlayPopup draws the popup box above its anchor cell, or below it when
// there is no room, and marks the anchor. Nothing is drawn while the anchor
// is off the canvas. lines must be plain text.
func overlayPopup(lines []string, f mapview.Frame, pos orb.Point, text string, w, h int) []string {
	px := f.PixelAt(pos)
	ax := int(math.Floor(px.X / 2))
	ay := int(math.Floor(px.Y / 4))
	if ax < 0 || ax >= w || ay < 0 || ay >= h {
		// anchor scrolled off the canvas
		return lines
	}

	if text == "" {
		text = "(no attributes)"
	}
	body := strings.Split(text, "\n")
	if maxRows := h - 3; maxRows > 0 && len(body) > maxRows {
		body = append(body[:maxRows-1], "…")
	}
	box := strings.Split(popupBox.MaxWidth(min(48, w)).Render(strings.Join(body, "\n")), "\n")
	bw := lipgloss.Width(box[0])

	x0 := max(0, min(ax-bw/2, w-bw))
	y0 := ay - len(box)
	if y0 < 0 {
		y0 = ay + 1
	}
	y0 = max(0, min(y0, h-len(box)))

	covered := make(map[int]bool, len(box))
	for i, bl := range box {
		y := y0 + i
		if y < 0 || y >= len(lines) {
			continue
		}
		r := []rune(lines[y])
		end := min(len(r), x0+lipgloss.Width(bl))
		if x0 >= end {
			continue
		}
		lines[y] = string(r[:x0]) + popupStyle.Render(bl) + string(r[end:])
		covered[y] = true
	}
	if !covered[ay] {
		r := []rune(lines[ay])
		lines[ay] = string(r[:ax]) + markerStyle.Render("◉") + string(r[ax+1:])
	}
	return lines
}

// renderScale draws the scale line as a segmented bar, its label, or both.
func renderScale(s mapview.Scale) string {
	cells := int(math.Round(s.Width / 2))
	if cells < 2 || s.Label == "" {
		return ""
	}
	if !s.Bar {
		if s.Text {
			return s.Label
		}
		return ""
	}
	steps := max(1, s.Steps)
	var b strings.Builder
	b.WriteString("├")
	for i := 1; i < cells; i++ {
		if i%max(1, cells/steps) == 0 && i < cells-1 {
			b.WriteString("┼")
		} else {
			b.WriteString("─")
		}
	}
	b.WriteString("┤")
	if s.Text {
		b.WriteString(" ")
		b.WriteString(s.Label)
	}
	return b.String()
}
