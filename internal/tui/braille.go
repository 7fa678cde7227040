package tui

import (
	"math"
	"sort"

	"github.com/paulmach/orb"

	"parcelmap/internal/mapview"
)

// brailleBuf is a canvas of braille cells, each a 2x4 grid of micro-pixels.
// Micro-pixels are the controller's pixel unit in the terminal.
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy < 0 || cy >= b.h || cx < 0 || cx >= b.w {
		return
	}
	var bit uint8
	if rx == 0 {
		switch ry {
		case 0:
			bit = 0x01
		case 1:
			bit = 0x02
		case 2:
			bit = 0x04
		case 3:
			bit = 0x40
		}
	} else {
		switch ry {
		case 0:
			bit = 0x08
		case 1:
			bit = 0x10
		case 2:
			bit = 0x20
		case 3:
			bit = 0x80
		}
	}
	b.m[cy][cx] |= bit
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func micro(p mapview.Pixel) (int, int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y))
}

// drawPath connects projected coordinates in order.
func (b *brailleBuf) drawPath(f mapview.Frame, pts []orb.Point, closed bool) {
	if len(pts) == 0 {
		return
	}
	x0, y0 := micro(f.PixelAt(pts[0]))
	if len(pts) == 1 {
		b.setPixel(x0, y0)
		return
	}
	px, py := x0, y0
	for _, p := range pts[1:] {
		x, y := micro(f.PixelAt(p))
		b.drawLineMicro(px, py, x, y)
		px, py = x, y
	}
	if closed {
		b.drawLineMicro(px, py, x0, y0)
	}
}

// drawMarker draws a small cross so single points stay visible.
func (b *brailleBuf) drawMarker(f mapview.Frame, p orb.Point) {
	x, y := micro(f.PixelAt(p))
	b.setPixel(x, y)
	b.setPixel(x-1, y)
	b.setPixel(x+1, y)
	b.setPixel(x, y-1)
	b.setPixel(x, y+1)
}

// fillPolygon fills rings with the even-odd rule, one scanline per
// micro-pixel row, so holes stay empty.
func (b *brailleBuf) fillPolygon(f mapview.Frame, poly orb.Polygon) {
	var rings [][][2]int
	for _, r := range poly {
		sm := make([][2]int, 0, len(r))
		for _, p := range r {
			x, y := micro(f.PixelAt(p))
			sm = append(sm, [2]int{x, y})
		}
		if len(sm) >= 3 {
			rings = append(rings, sm)
		}
	}
	hMic := b.h * 4
	for yMic := 0; yMic < hMic; yMic++ {
		var xs []int
		for _, ring := range rings {
			for i := 0; i < len(ring); i++ {
				a := ring[i]
				c := ring[(i+1)%len(ring)]
				if a[1] == c[1] {
					continue
				}
				y0, y1 := a[1], c[1]
				x0, x1 := a[0], c[0]
				if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
					t := float64(yMic-y0) / float64(y1-y0)
					xs = append(xs, int(float64(x0)+t*float64(x1-x0)))
				}
			}
		}
		sort.Ints(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for xMic := max(0, xs[i]); xMic <= min(xs[i+1], b.w*2-1); xMic++ {
				b.setPixel(xMic, yMic)
			}
		}
	}
}

// drawGeometry draws a projected geometry. fill paints polygon interiors.
func (b *brailleBuf) drawGeometry(f mapview.Frame, g orb.Geometry, fill bool) {
	switch g := g.(type) {
	case orb.Point:
		b.drawMarker(f, g)
	case orb.MultiPoint:
		for _, p := range g {
			b.drawMarker(f, p)
		}
	case orb.LineString:
		b.drawPath(f, g, false)
	case orb.MultiLineString:
		for _, ls := range g {
			b.drawPath(f, ls, false)
		}
	case orb.Ring:
		b.drawPath(f, g, true)
	case orb.Polygon:
		if fill {
			b.fillPolygon(f, g)
		}
		for _, r := range g {
			b.drawPath(f, r, true)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			b.drawGeometry(f, p, fill)
		}
	case orb.Collection:
		for _, c := range g {
			b.drawGeometry(f, c, fill)
		}
	case orb.Bound:
		b.drawGeometry(f, g.ToPolygon(), fill)
	}
}

func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			mask := b.m[y][x]
			if mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = string(row)
	}
	return out
}
