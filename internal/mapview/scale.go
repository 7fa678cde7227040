package mapview

import (
	"fmt"
	"math"
)

// ScaleOptions configures the scale bar.
type ScaleOptions struct {
	Steps    int
	MinWidth float64
	// NoBar and NoText hide the segmented bar or the distance label.
	NoBar  bool
	NoText bool
}

// Scale is a ground distance bar.
type Scale struct {
	Meters float64
	Width  float64 // pixels
	Steps  int
	Label  string
	Bar    bool
	Text   bool
}

var niceSteps = []float64{1, 2, 5}

// ScaleLine picks the smallest 1-2-5 distance whose bar is at least
// MinWidth pixels at the view center's latitude.
func (c *Controller) ScaleLine() Scale {
	opts := c.opts.Scale
	if opts.MinWidth <= 0 {
		opts.MinWidth = 64
	}
	if opts.Steps <= 0 {
		opts.Steps = 1
	}
	lat := c.view.LonLat()[1] * math.Pi / 180
	ground := c.view.Resolution() * math.Cos(lat)
	if ground <= 0 {
		return Scale{Steps: opts.Steps, Bar: !opts.NoBar, Text: !opts.NoText}
	}
	minMeters := opts.MinWidth * ground
	exp := math.Floor(math.Log10(minMeters))
	var meters float64
	for meters == 0 {
		base := math.Pow(10, exp)
		for _, s := range niceSteps {
			if v := s * base; v >= minMeters {
				meters = v
				break
			}
		}
		exp++
	}
	return Scale{
		Meters: meters,
		Width:  meters / ground,
		Steps:  opts.Steps,
		Label:  scaleLabel(meters),
		Bar:    !opts.NoBar,
		Text:   !opts.NoText,
	}
}

func scaleLabel(m float64) string {
	if m >= 1000 {
		return fmt.Sprintf("%g km", m/1000)
	}
	if m < 1 {
		return fmt.Sprintf("%g mm", m*1000)
	}
	return fmt.Sprintf("%g m", m)
}
