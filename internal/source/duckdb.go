package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"parcelmap/internal/geom"
)

// DuckDB runs a query against a DuckDB database file, or an in-memory
// database when Path is empty. Queries can read GeoParquet, CSV or GeoJSON
// files directly once the spatial extension is listed in Extensions.
type DuckDB struct {
	Path       string
	Extensions []string
	Query      Query
}

func (d DuckDB) Load(ctx context.Context) ([]geom.Feature, error) {
	db, err := sql.Open("duckdb", d.Path)
	if err != nil {
		return nil, fmt.Errorf("duckdb open: %w", err)
	}
	defer db.Close()

	for _, ext := range d.Extensions {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("INSTALL %s; LOAD %s;", ext, ext)); err != nil {
			return nil, fmt.Errorf("duckdb extension %s: %w", ext, err)
		}
	}
	rows, err := db.QueryContext(ctx, d.Query.SQL)
	if err != nil {
		return nil, fmt.Errorf("duckdb query: %w", err)
	}
	return d.Query.collectSQL(rows)
}

func (q Query) collectSQL(rows *sql.Rows) ([]geom.Feature, error) {
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	var out []geom.Feature
	for idx := 0; rows.Next(); idx++ {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok && len(b) == 16 && types[i].DatabaseTypeName() == "UUID" {
				vals[i] = [16]byte(b)
			}
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
