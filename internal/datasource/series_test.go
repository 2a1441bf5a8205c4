package datasource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSeries(t *testing.T) {
	table := mustTable(t, "date,value\n2024-02-15,5\nnot a date,7\n2024-01-01,10\n2024-01-02,\n2024-01-02,20\n")

	series, stats, err := BuildSeries(table, "date", "value", time.UTC)
	require.NoError(t, err)

	require.Len(t, series, 3)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series[0].Timestamp)
	assert.Equal(t, 10.0, series[0].Value)
	assert.Equal(t, 20.0, series[1].Value)
	assert.Equal(t, 5.0, series[2].Value)

	assert.Equal(t, Stats{Rows: 5, Kept: 3, DroppedDates: 1, DroppedValues: 1}, stats)
	assert.Equal(t, 2, stats.Dropped())
}

func TestBuildSeries_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("+09:00", 9*3600)
	table := mustTable(t, "date,value\n2024-01-01 08:00:00,1\n")

	series, _, err := BuildSeries(table, "date", "value", tokyo)
	require.NoError(t, err)
	require.Len(t, series, 1)

	_, offset := series[0].Timestamp.Zone()
	assert.Equal(t, 9*3600, offset)
}

func TestBuildSeries_UnknownColumn(t *testing.T) {
	table := mustTable(t, salesCSV)

	_, _, err := BuildSeries(table, "Month", "Revenue", time.UTC)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestBuildSeries_SQLTypes(t *testing.T) {
	table := &Table{
		Columns: []string{"created", "amount"},
		Rows: []Row{
			{"created": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "amount": int64(4)},
			{"created": time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "amount": 2.5},
			{"created": nil, "amount": int64(1)},
		},
	}

	series, stats, err := BuildSeries(table, "created", "amount", time.UTC)
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 2.5, series[0].Value)
	assert.Equal(t, 1, stats.DroppedDates)
}

func TestFilterRows(t *testing.T) {
	table := mustTable(t, salesCSV)

	rows, err := FilterRows(table, "Month",
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		time.UTC)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "south", rows[0]["Region"])
	assert.Equal(t, "2024-02-15", rows[1]["Month"])
}

func TestDateBounds(t *testing.T) {
	table := mustTable(t, "d,v\n2024-03-01,1\nnot a date,2\n2024-01-15,3\n2024-02-01,4\n")

	min, max, ok := DateBounds(table, "d", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), min)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), max)

	_, _, ok = DateBounds(mustTable(t, "d,v\nx,1\n"), "d", time.UTC)
	assert.False(t, ok)
}
