package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"parcelmap/internal/geom"
)

// PostGIS loads features from a PostgreSQL/PostGIS query. Select the
// geometry with ST_AsGeoJSON, ST_AsText or ST_AsBinary in EPSG:4326.
type PostGIS struct {
	DSN   string
	Query Query
}

func (p PostGIS) Load(ctx context.Context) ([]geom.Feature, error) {
	pool, err := pgxpool.New(ctx, p.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgis connect: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgis ping: %w", err)
	}
	rows, err := pool.Query(ctx, p.Query.SQL)
	if err != nil {
		return nil, fmt.Errorf("postgis query: %w", err)
	}
	return p.Query.collectPG(rows)
}

func (q Query) collectPG(rows pgx.Rows) ([]geom.Feature, error) {
	defer rows.Close()
	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}
	var out []geom.Feature
	for idx := 0; rows.Next(); idx++ {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		f, err := q.rowFeature(idx, cols, vals)
		if err != nil {
			return nil, err
		}
		if f.Geometry != nil {
			out = append(out, f)
		}
	}
	return out, rows.Err()
}
