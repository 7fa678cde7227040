package source

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/marcboeker/go-duckdb"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"

	"parcelmap/internal/geom"
)

// Query is a SQL statement whose rows become features. Every column other
// than the geometry column and the excluded ones becomes an attribute, in
// select-list order. A column named "id" also supplies the feature ID.
type Query struct {
	SQL            string
	GeometryColumn string
	Exclude        []string
}

func (q Query) geometryColumn() string {
	if q.GeometryColumn == "" {
		return geom.DefaultGeometryName
	}
	return q.GeometryColumn
}

// rowFeature turns one result row into a feature. Rows with a NULL geometry
// return a nil geometry and are dropped by the caller.
func (q Query) rowFeature(idx int, cols []string, vals []any) (geom.Feature, error) {
	gcol := q.geometryColumn()
	f := geom.Feature{ID: strconv.Itoa(idx)}
	found := false
	for i, name := range cols {
		v := vals[i]
		if name == gcol {
			found = true
			g, err := decodeGeometry(v)
			if err != nil {
				return geom.Feature{}, fmt.Errorf("row %d: %s: %w", idx, name, err)
			}
			f.Geometry = g
			continue
		}
		if q.excluded(name) {
			continue
		}
		a := geom.ValueAttr(name, driverValue(v))
		if name == "id" && !a.Null {
			f.ID = a.Value
		}
		f.Attrs = append(f.Attrs, a)
	}
	if !found {
		return geom.Feature{}, fmt.Errorf("no geometry column %q in result", gcol)
	}
	return f, nil
}

// driverValue converts DuckDB values that carry no text form of their own.
// pgx values are unwrapped by geom.ValueAttr through driver.Valuer.
func driverValue(v any) any {
	switch t := v.(type) {
	case duckdb.Decimal:
		if t.Value == nil {
			return nil
		}
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(t.Scale)), nil)
		return new(big.Rat).SetFrac(t.Value, scale).FloatString(int(t.Scale))
	case duckdb.UUID:
		return [16]byte(t)
	}
	return v
}

func (q Query) excluded(name string) bool {
	for _, e := range q.Exclude {
		if e == name {
			return true
		}
	}
	return false
}

// decodeGeometry accepts GeoJSON or WKT text, WKB bytes, or hex encoded WKB.
func decodeGeometry(v any) (orb.Geometry, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case orb.Geometry:
		return t, nil
	case []byte:
		if g, err := wkb.Unmarshal(t); err == nil {
			return g, nil
		}
		return decodeText(string(t))
	case string:
		return decodeText(t)
	}
	return nil, fmt.Errorf("unsupported geometry value %T", v)
}

func decodeText(s string) (orb.Geometry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if s[0] == '{' {
		g, err := geojson.UnmarshalGeometry([]byte(s))
		if err != nil {
			return nil, err
		}
		return g.Geometry(), nil
	}
	if isHex(s) {
		raw, err := hex.DecodeString(s)
		if err == nil {
			return wkb.Unmarshal(raw)
		}
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, errors.New("geometry is not GeoJSON, WKT or WKB")
	}
	return g, nil
}

func isHex(s string) bool {
	if len(s)%2 != 0 {
		return false
	}
	return bytes.IndexFunc([]byte(s), func(r rune) bool {
		return !('0' <= r && r <= '9' || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F')
	}) < 0
}
