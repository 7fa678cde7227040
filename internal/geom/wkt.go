package geom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
)

// ParseWKT parses one WKT geometry (POINT, MULTIPOINT, LINESTRING, POLYGON,
// their MULTI forms or a GEOMETRYCOLLECTION) into a single attribute-less
// feature.
func ParseWKT(s string) (Collection, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Collection{}, errors.New("empty wkt")
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return Collection{}, fmt.Errorf("wkt: %w", err)
	}
	var c Collection
	c.Add(Feature{ID: "0", Geometry: g})
	if len(c.Features) == 0 {
		return Collection{}, errors.New("wkt: no coordinates parsed")
	}
	return c, nil
}
