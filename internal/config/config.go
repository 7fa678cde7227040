// Package config loads the map definition: initial view, home view, the
// layer stack and control settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"parcelmap/internal/geom"
	"parcelmap/internal/mapview"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// LonLat is a WGS84 coordinate written as [lon, lat].
type LonLat [2]float64

// Point converts to an orb point.
func (ll LonLat) Point() orb.Point { return orb.Point(ll) }

type Config struct {
	View     ViewConfig     `yaml:"view"`
	Home     HomeConfig     `yaml:"home"`
	Layers   []LayerConfig  `yaml:"layers"`
	Controls ControlsConfig `yaml:"controls"`
}

type ViewConfig struct {
	Center  LonLat  `yaml:"center"`
	Zoom    float64 `yaml:"zoom"`
	MinZoom float64 `yaml:"minZoom"`
	MaxZoom float64 `yaml:"maxZoom"`
}

type HomeConfig struct {
	Center   LonLat        `yaml:"center"`
	Zoom     float64       `yaml:"zoom"`
	Duration time.Duration `yaml:"duration"`
}

// LayerConfig describes one layer. Kind selects which of the source fields
// apply: url/attributions for osm and xyz, wms for wms, source for vector.
type LayerConfig struct {
	ID           string       `yaml:"id"`
	Title        string       `yaml:"title"`
	Group        string       `yaml:"group,omitempty"`
	Kind         string       `yaml:"kind"`
	Visible      *bool        `yaml:"visible,omitempty"`
	ZIndex       int          `yaml:"zIndex,omitempty"`
	URL          string       `yaml:"url,omitempty"`
	Attributions []string     `yaml:"attributions,omitempty"`
	WMS          WMSConfig    `yaml:"wms,omitempty"`
	Source       SourceConfig `yaml:"source,omitempty"`
	GeometryName string       `yaml:"geometryName,omitempty"`
}

type WMSConfig struct {
	URL        string `yaml:"url"`
	Layers     string `yaml:"layers"`
	Tiled      bool   `yaml:"tiled"`
	ServerType string `yaml:"serverType,omitempty"`
}

// SourceConfig locates a vector layer's features.
//
//	type: file     path to .geojson/.json/.csv/.kml/.wkt
//	type: postgis  dsn + query
//	type: duckdb   path (empty for in-memory) + query, same column contract
//
// The geometry column may hold GeoJSON, WKT or WKB.
type SourceConfig struct {
	Type           string   `yaml:"type"`
	Path           string   `yaml:"path,omitempty"`
	DSN            string   `yaml:"dsn,omitempty"`
	Query          string   `yaml:"query,omitempty"`
	GeometryColumn string   `yaml:"geometryColumn,omitempty"`
	Exclude        []string `yaml:"exclude,omitempty"`
	// Extensions are DuckDB extensions to INSTALL and LOAD before querying.
	Extensions []string `yaml:"extensions,omitempty"`
}

type ControlsConfig struct {
	HitTolerance  float64             `yaml:"hitTolerance"`
	ZoomDuration  time.Duration       `yaml:"zoomDuration"`
	MousePosition MousePositionConfig `yaml:"mousePosition"`
	ScaleLine     ScaleLineConfig     `yaml:"scaleLine"`
}

type MousePositionConfig struct {
	Precision  int    `yaml:"precision"`
	Projection string `yaml:"projection"`
}

type ScaleLineConfig struct {
	Units    string  `yaml:"units"`
	Bar      bool    `yaml:"bar"`
	Steps    int     `yaml:"steps"`
	Text     bool    `yaml:"text"`
	MinWidth float64 `yaml:"minWidth"`
}

// The mouse position readout is lon/lat and the scale line metric; these
// are the only accepted values.
const (
	ProjectionLonLat = "EPSG:4326"
	UnitsMetric      = "metric"
)

// Default is the Kakamega parcel map.
func Default() Config {
	return Config{
		View: ViewConfig{Center: LonLat{34.75, 0.28}, Zoom: 12, MinZoom: 0, MaxZoom: 28},
		Home: HomeConfig{Center: LonLat{34.75, 0.2833}, Zoom: 14, Duration: time.Second},
		Layers: []LayerConfig{
			{ID: "osm", Title: "OpenStreetMap", Kind: string(mapview.KindOSM)},
			{
				ID:    "satellite",
				Title: "OpenAerialMap",
				Kind:  string(mapview.KindXYZ),
				URL:   "https://tile.openaerialmap.org/{z}/{x}/{y}.jpg",
				Attributions: []string{
					mapview.OSMAttribution,
					"Imagery © OpenAerialMap",
				},
			},
			{
				ID:    "core_urban",
				Title: "Core Urban",
				Group: "Kakamega Layers",
				Kind:  string(mapview.KindWMS),
				WMS: WMSConfig{
					URL:        "http://localhost:8080/geoserver/Kakamega_Parcels/wms",
					Layers:     "kakamega_parcels:core_urban",
					Tiled:      true,
					ServerType: "geoserver",
				},
			},
			{
				ID:    "old_town",
				Title: "Old Town",
				Group: "Kakamega Layers",
				Kind:  string(mapview.KindWMS),
				WMS: WMSConfig{
					URL:        "http://localhost:8080/geoserver/Kakamega_Parcels/wms",
					Layers:     "kakamega_parcels:old_town",
					Tiled:      true,
					ServerType: "geoserver",
				},
			},
		},
		Controls: ControlsConfig{
			HitTolerance:  3,
			ZoomDuration:  250 * time.Millisecond,
			MousePosition: MousePositionConfig{Precision: 6, Projection: ProjectionLonLat},
			ScaleLine:     ScaleLineConfig{Units: UnitsMetric, Bar: true, Steps: 4, Text: true, MinWidth: 140},
		},
	}
}

// Load reads a YAML file over the defaults. A layers list in the file
// replaces the default layers.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r over the defaults and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks zoom ranges and every layer's required fields.
func (c Config) Validate() error {
	var errs []error
	if c.View.MaxZoom <= c.View.MinZoom {
		errs = append(errs, fmt.Errorf("view: maxZoom %v must exceed minZoom %v", c.View.MaxZoom, c.View.MinZoom))
	}
	if c.View.Zoom < c.View.MinZoom || c.View.Zoom > c.View.MaxZoom {
		errs = append(errs, fmt.Errorf("view: zoom %v outside [%v, %v]", c.View.Zoom, c.View.MinZoom, c.View.MaxZoom))
	}
	if c.Home.Zoom < c.View.MinZoom || c.Home.Zoom > c.View.MaxZoom {
		errs = append(errs, fmt.Errorf("home: zoom %v outside [%v, %v]", c.Home.Zoom, c.View.MinZoom, c.View.MaxZoom))
	}
	for _, ll := range []LonLat{c.View.Center, c.Home.Center} {
		if ll[0] < -180 || ll[0] > 180 || ll[1] < -85.06 || ll[1] > 85.06 {
			errs = append(errs, fmt.Errorf("coordinate %v outside web mercator range", ll))
		}
	}
	if c.Controls.HitTolerance < 0 {
		errs = append(errs, errors.New("controls: hitTolerance must not be negative"))
	}
	if p := c.Controls.MousePosition.Projection; p != "" && p != ProjectionLonLat {
		errs = append(errs, fmt.Errorf("controls: mousePosition.projection %q unsupported, only %s", p, ProjectionLonLat))
	}
	if u := c.Controls.ScaleLine.Units; u != "" && u != UnitsMetric {
		errs = append(errs, fmt.Errorf("controls: scaleLine.units %q unsupported, only %s", u, UnitsMetric))
	}
	seen := map[string]bool{}
	for i, l := range c.Layers {
		if l.ID == "" {
			errs = append(errs, fmt.Errorf("layers[%d]: id is required", i))
		} else if seen[l.ID] {
			errs = append(errs, fmt.Errorf("layers[%d]: duplicate id %q", i, l.ID))
		}
		seen[l.ID] = true
		if err := l.validate(); err != nil {
			errs = append(errs, fmt.Errorf("layers[%d] %s: %w", i, l.ID, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

func (l LayerConfig) validate() error {
	switch mapview.Kind(l.Kind) {
	case mapview.KindOSM:
	case mapview.KindXYZ:
		if !strings.Contains(l.URL, "{z}") {
			return errors.New("xyz url needs a {z}/{x}/{y} template")
		}
	case mapview.KindWMS:
		if l.WMS.URL == "" || l.WMS.Layers == "" {
			return errors.New("wms needs url and layers")
		}
	case mapview.KindVector:
		switch l.Source.Type {
		case "file":
			if l.Source.Path == "" {
				return errors.New("file source needs a path")
			}
		case "postgis":
			if l.Source.DSN == "" || l.Source.Query == "" {
				return errors.New("postgis source needs dsn and query")
			}
		case "duckdb":
			if l.Source.Query == "" {
				return errors.New("duckdb source needs a query")
			}
		default:
			return fmt.Errorf("unknown source type %q", l.Source.Type)
		}
	default:
		return fmt.Errorf("unknown kind %q", l.Kind)
	}
	return nil
}

// Options converts the config into controller options.
func (c Config) Options() mapview.Options {
	return mapview.Options{
		Center:       c.View.Center.Point(),
		Zoom:         c.View.Zoom,
		MinZoom:      c.View.MinZoom,
		MaxZoom:      c.View.MaxZoom,
		HomeCenter:   c.Home.Center.Point(),
		HomeZoom:     c.Home.Zoom,
		HomeDuration: c.Home.Duration,
		ZoomDuration: c.Controls.ZoomDuration,
		HitTolerance: c.Controls.HitTolerance,
		Precision:    c.Controls.MousePosition.Precision,
		Scale: mapview.ScaleOptions{
			Steps:    c.Controls.ScaleLine.Steps,
			MinWidth: c.Controls.ScaleLine.MinWidth,
			NoBar:    !c.Controls.ScaleLine.Bar,
			NoText:   !c.Controls.ScaleLine.Text,
		},
	}
}

// Layer builds the map layer. Vector layers get the given features.
func (l LayerConfig) Layer(features []geom.Feature) *mapview.Layer {
	kind := mapview.Kind(l.Kind)
	var ml *mapview.Layer
	if kind == mapview.KindVector {
		ml = mapview.NewVectorLayer(l.ID, l.Title, features)
	} else {
		ml = &mapview.Layer{ID: l.ID, Title: l.Title, Kind: kind}
	}
	ml.Group = l.Group
	ml.Visible = l.Visible == nil || *l.Visible
	ml.ZIndex = l.ZIndex
	ml.URL = l.URL
	ml.Attributions = l.Attributions
	if kind == mapview.KindOSM && len(ml.Attributions) == 0 {
		ml.Attributions = []string{mapview.OSMAttribution}
	}
	ml.WMS = mapview.WMS{
		URL:        l.WMS.URL,
		Layers:     l.WMS.Layers,
		Tiled:      l.WMS.Tiled,
		ServerType: l.WMS.ServerType,
	}
	if l.GeometryName != "" {
		ml.GeometryName = l.GeometryName
	} else if ml.GeometryName == "" {
		ml.GeometryName = geom.DefaultGeometryName
	}
	if ml.Title == "" {
		ml.Title = l.ID
	}
	return ml
}

// Build assembles a controller from the config. features maps vector layer
// IDs to their loaded features; layers without an entry start empty.
func (c Config) Build(features map[string][]geom.Feature) *mapview.Controller {
	layers := make([]*mapview.Layer, 0, len(c.Layers))
	for _, l := range c.Layers {
		layers = append(layers, l.Layer(features[l.ID]))
	}
	return mapview.New(c.Options(), layers...)
}
