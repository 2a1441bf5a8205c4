package datasource

import (
	"fmt"
	"sort"
	"time"

	"github.com/soltixdb/tsexplorer/internal/timeseries"
)

// Stats counts how many rows survived cleaning
type Stats struct {
	Rows          int `json:"rows"`
	Kept          int `json:"kept"`
	DroppedDates  int `json:"dropped_dates"`
	DroppedValues int `json:"dropped_values"`
}

// Dropped returns the number of rows that were discarded
func (s Stats) Dropped() int {
	return s.DroppedDates + s.DroppedValues
}

// BuildSeries parses the date and value columns into a Series sorted ascending
// by timestamp. Rows with an unparseable date or a missing value are dropped.
func BuildSeries(table *Table, dateCol, valueCol string, loc *time.Location) (timeseries.Series, Stats, error) {
	stats := Stats{Rows: len(table.Rows)}

	if !table.HasColumn(dateCol) {
		return nil, stats, fmt.Errorf("%w: date column %q", ErrUnknownColumn, dateCol)
	}
	if !table.HasColumn(valueCol) {
		return nil, stats, fmt.Errorf("%w: value column %q", ErrUnknownColumn, valueCol)
	}

	series := make(timeseries.Series, 0, len(table.Rows))
	for _, row := range table.Rows {
		ts, err := ToTime(row[dateCol], loc)
		if err != nil {
			stats.DroppedDates++
			continue
		}
		value, ok := ToFloat64(row[valueCol])
		if !ok {
			stats.DroppedValues++
			continue
		}
		series = append(series, timeseries.Observation{Timestamp: ts, Value: value})
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Timestamp.Before(series[j].Timestamp)
	})
	stats.Kept = len(series)

	return series, stats, nil
}

// FilterRows returns the raw rows whose date lies in [start, end] (calendar
// dates, inclusive), ordered ascending by date. Rows with unparseable dates
// are dropped.
func FilterRows(table *Table, dateCol string, start, end time.Time, loc *time.Location) ([]Row, error) {
	if !table.HasColumn(dateCol) {
		return nil, fmt.Errorf("%w: date column %q", ErrUnknownColumn, dateCol)
	}

	from := timeseries.DateOf(start)
	to := timeseries.DateOf(end)

	type dated struct {
		ts  time.Time
		row Row
	}
	kept := make([]dated, 0)
	for _, row := range table.Rows {
		ts, err := ToTime(row[dateCol], loc)
		if err != nil {
			continue
		}
		d := timeseries.DateOf(ts)
		if d.Before(from) || d.After(to) {
			continue
		}
		kept = append(kept, dated{ts: ts, row: row})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].ts.Before(kept[j].ts)
	})

	rows := make([]Row, len(kept))
	for i, k := range kept {
		rows[i] = k.row
	}
	return rows, nil
}

// DateBounds returns the earliest and latest parseable dates of a column
func DateBounds(table *Table, dateCol string, loc *time.Location) (min, max time.Time, ok bool) {
	for _, row := range table.Rows {
		ts, err := ToTime(row[dateCol], loc)
		if err != nil {
			continue
		}
		if !ok || ts.Before(min) {
			min = ts
		}
		if !ok || ts.After(max) {
			max = ts
		}
		ok = true
	}
	return min, max, ok
}
