package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// ScanRows runs query against client and maps every returned row through
// scan, collecting the results into a slice. It closes the rows and
// folds both the query error and any mid-iteration scan error into a
// single return, so callers get one error check instead of three.
func ScanRows[T any](ctx context.Context, client Client, query string, scan func(*sql.Rows) (T, error), args ...interface{}) ([]T, error) {
	rows, err := client.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return out, nil
}
