package geom

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

type rawFeature struct {
	ID         json.RawMessage `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// LoadGeoJSON reads a GeoJSON file.
func LoadGeoJSON(path string) (Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Collection{}, err
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON accepts a FeatureCollection, a single Feature or a bare
// geometry. Geometry decoding is left to orb; properties are decoded in
// document order so popups list them the way the source wrote them.
func ParseGeoJSON(data []byte) (Collection, error) {
	var head struct {
		Type     string       `json:"type"`
		Features []rawFeature `json:"features"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Collection{}, err
	}
	var c Collection
	switch head.Type {
	case "FeatureCollection":
		for i, rf := range head.Features {
			f, err := rf.feature(i)
			if err != nil {
				return Collection{}, err
			}
			c.Add(f)
		}
	case "Feature":
		var rf rawFeature
		if err := json.Unmarshal(data, &rf); err != nil {
			return Collection{}, err
		}
		f, err := rf.feature(0)
		if err != nil {
			return Collection{}, err
		}
		c.Add(f)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return Collection{}, err
		}
		c.Add(Feature{ID: "0", Geometry: g.Geometry()})
	}
	if len(c.Features) == 0 {
		return Collection{}, errors.New("no geometries found")
	}
	return c, nil
}

func (rf rawFeature) feature(idx int) (Feature, error) {
	f := Feature{ID: featureID(rf.ID, idx)}
	if g := bytes.TrimSpace(rf.Geometry); len(g) > 0 && !bytes.Equal(g, []byte("null")) {
		geo, err := geojson.UnmarshalGeometry(g)
		if err != nil {
			return Feature{}, fmt.Errorf("feature %s: %w", f.ID, err)
		}
		f.Geometry = geo.Geometry()
	}
	attrs, err := DecodeAttrs(rf.Properties)
	if err != nil {
		return Feature{}, fmt.Errorf("feature %s: %w", f.ID, err)
	}
	f.Attrs = attrs
	return f, nil
}

func featureID(raw json.RawMessage, idx int) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Sprintf("%d", idx)
	}
	return jsonAttr("id", raw).Value
}
