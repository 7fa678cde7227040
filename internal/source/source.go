// Package source loads vector layer features from files and databases.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"parcelmap/internal/config"
	"parcelmap/internal/geom"
	"parcelmap/internal/mapview"
)

// ErrUnsupported is returned for source types with no loader.
var ErrUnsupported = errors.New("unsupported source")

// Loader produces a layer's features.
type Loader interface {
	Load(ctx context.Context) ([]geom.Feature, error)
}

// File loads features from a local GeoJSON, CSV, KML or WKT file.
type File struct {
	Path string
}

func (f File) Load(context.Context) ([]geom.Feature, error) {
	coll, err := geom.Load(f.Path)
	if err != nil {
		return nil, err
	}
	return coll.Features, nil
}

// For returns the loader a source config describes.
func For(sc config.SourceConfig) (Loader, error) {
	q := Query{
		SQL:            sc.Query,
		GeometryColumn: sc.GeometryColumn,
		Exclude:        sc.Exclude,
	}
	switch sc.Type {
	case "file":
		return File{Path: sc.Path}, nil
	case "postgis":
		return PostGIS{DSN: sc.DSN, Query: q}, nil
	case "duckdb":
		return DuckDB{Path: sc.Path, Extensions: sc.Extensions, Query: q}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, sc.Type)
}

// LoadAll loads every vector layer of cfg. A layer that fails to load is
// logged and left empty; the returned error joins all failures.
func LoadAll(ctx context.Context, cfg config.Config, log zerolog.Logger) (map[string][]geom.Feature, error) {
	out := make(map[string][]geom.Feature)
	var errs []error
	for _, l := range cfg.Layers {
		if mapview.Kind(l.Kind) != mapview.KindVector {
			continue
		}
		start := time.Now()
		feats, err := load(ctx, l.Source)
		if err != nil {
			log.Warn().Err(err).Str("layer", l.ID).Str("source", l.Source.Type).Msg("layer load failed")
			errs = append(errs, fmt.Errorf("layer %s: %w", l.ID, err))
			continue
		}
		log.Info().
			Str("layer", l.ID).
			Str("source", l.Source.Type).
			Int("features", len(feats)).
			Dur("took", time.Since(start)).
			Msg("layer loaded")
		out[l.ID] = feats
	}
	return out, errors.Join(errs...)
}

func load(ctx context.Context, sc config.SourceConfig) ([]geom.Feature, error) {
	ld, err := For(sc)
	if err != nil {
		return nil, err
	}
	return ld.Load(ctx)
}
