package geom

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// LoadCSV reads a CSV with latitude/longitude columns and returns one point
// feature per row. Every column, coordinates included, becomes an attribute
// in header order.
func LoadCSV(path string) (Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Collection{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV is LoadCSV over a reader.
// Column detection: lat|latitude|y and lon|lng|long|longitude|x (case-insensitive).
func ReadCSV(r io.Reader) (Collection, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return Collection{}, err
	}
	if len(recs) == 0 {
		return Collection{}, errors.New("empty csv")
	}
	header := recs[0]
	idxLat, idxLon := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "lat", "latitude", "y":
			if idxLat == -1 {
				idxLat = i
			}
		case "lon", "lng", "long", "longitude", "x":
			if idxLon == -1 {
				idxLon = i
			}
		}
	}
	if idxLat == -1 || idxLon == -1 {
		return Collection{}, errors.New("csv: latitude/longitude columns not found")
	}
	var c Collection
	for n, row := range recs[1:] {
		if idxLon >= len(row) || idxLat >= len(row) {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(row[idxLon]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(row[idxLat]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		attrs := make([]Attr, len(header))
		for i, h := range header {
			if i >= len(row) {
				attrs[i] = Attr{Name: h, Null: true}
				continue
			}
			attrs[i] = Attr{Name: h, Value: row[i]}
		}
		c.Add(Feature{ID: strconv.Itoa(n), Geometry: orb.Point{lon, lat}, Attrs: attrs})
	}
	if len(c.Features) == 0 {
		return Collection{}, errors.New("csv: no valid points parsed")
	}
	return c, nil
}
