package geom

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for file extensions no loader handles.
var ErrUnsupported = errors.New("unsupported file")

// Extensions lists the file extensions Load understands.
var Extensions = []string{".geojson", ".json", ".csv", ".kml", ".wkt"}

// Supported reports whether path has a loadable extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load picks a loader by file extension.
func Load(path string) (Collection, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".geojson", ".json":
		return LoadGeoJSON(path)
	case ".csv":
		return LoadCSV(path)
	case ".kml":
		return LoadKML(path)
	case ".wkt":
		data, err := os.ReadFile(path)
		if err != nil {
			return Collection{}, err
		}
		return ParseWKT(string(data))
	}
	return Collection{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
}
