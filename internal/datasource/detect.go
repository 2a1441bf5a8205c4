package datasource

import (
	"fmt"
	"strings"
	"time"
)

// dateProbeSize is how many non-empty cells are parsed when probing a column
const dateProbeSize = 5

// DetectDateColumn picks the date column: the first column whose name contains
// "date" (case-insensitive), else the first column whose leading non-empty
// cells all parse as dates, else the first column.
func DetectDateColumn(table *Table, loc *time.Location) string {
	if len(table.Columns) == 0 {
		return ""
	}

	for _, c := range table.Columns {
		if strings.Contains(strings.ToLower(c), "date") {
			return c
		}
	}

	for _, c := range table.Columns {
		if looksLikeDates(table, c, loc) {
			return c
		}
	}

	return table.Columns[0]
}

func looksLikeDates(table *Table, column string, loc *time.Location) bool {
	probed := 0
	for _, row := range table.Rows {
		v := row[column]
		if IsMissing(v) {
			continue
		}
		if _, err := ToTime(v, loc); err != nil {
			return false
		}
		probed++
		if probed == dateProbeSize {
			break
		}
	}
	return probed > 0
}

// DetectNumericColumns returns, in header order, the columns holding at least
// one value where every non-missing value is a number
func DetectNumericColumns(table *Table) []string {
	numeric := make([]string, 0, len(table.Columns))

	for _, c := range table.Columns {
		seen := 0
		ok := true
		for _, row := range table.Rows {
			v := row[c]
			if IsMissing(v) {
				continue
			}
			if _, isNum := ToFloat64(v); !isNum {
				ok = false
				break
			}
			seen++
		}
		// A column with no values at all is not offered as numeric
		if ok && seen > 0 {
			numeric = append(numeric, c)
		}
	}

	return numeric
}

// Columns is the result of column selection
type Columns struct {
	Date  string `json:"date_column"`
	Value string `json:"value_column"`
}

// SelectColumns resolves the requested date and value columns, falling back to
// the detected date column and the first numeric column
func SelectColumns(table *Table, dateCol, valueCol string, loc *time.Location) (Columns, []string, error) {
	numeric := DetectNumericColumns(table)
	if len(numeric) == 0 {
		return Columns{}, nil, ErrNoNumericColumn
	}

	if dateCol == "" {
		dateCol = DetectDateColumn(table, loc)
	} else if !table.HasColumn(dateCol) {
		return Columns{}, numeric, fmt.Errorf("%w: date column %q", ErrUnknownColumn, dateCol)
	}

	if valueCol == "" {
		valueCol = numeric[0]
	} else if !contains(numeric, valueCol) {
		if !table.HasColumn(valueCol) {
			return Columns{}, numeric, fmt.Errorf("%w: value column %q", ErrUnknownColumn, valueCol)
		}
		return Columns{}, numeric, fmt.Errorf("%w: value column %q is not numeric", ErrUnknownColumn, valueCol)
	}

	return Columns{Date: dateCol, Value: valueCol}, numeric, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
