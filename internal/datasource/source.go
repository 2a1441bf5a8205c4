// Package datasource loads tabular rows from CSV files, uploads or MySQL and
// turns a pair of columns into a timeseries.Series.
package datasource

import (
	"context"
	"errors"
)

var (
	// ErrLoad reports that no input data is available
	ErrLoad = errors.New("no input data available")
	// ErrNoNumericColumn reports that a table has no numeric column
	ErrNoNumericColumn = errors.New("no numeric columns detected")
	// ErrUnknownColumn reports a column name that is not in the table header
	ErrUnknownColumn = errors.New("unknown column")
)

// Row maps a column name to its raw cell value.
// CSV cells are strings, SQL cells keep their driver types.
type Row map[string]interface{}

// Table is a loaded dataset. It is treated as read-only once loaded.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// HasColumn reports whether name is one of the table's columns
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Source loads a table
type Source interface {
	Load(ctx context.Context) (*Table, error)
}
