// Package timeseries implements calendar-bucket aggregation of dated numeric
// observations: range filtering, granularity selection, resampling into
// day/week/month/quarter/year buckets and summary statistics.
//
// Everything in this package is pure. Inputs are never mutated and every
// operation returns a fresh value.
package timeseries

import "time"

// Observation is a single dated value
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is a sequence of observations sorted ascending by timestamp
type Series []Observation

// Bucket is one calendar period and the sum of the values that fell into it
type Bucket struct {
	Start time.Time `json:"bucket_start"`
	Total float64   `json:"total"`
}

// AggregatedSeries is a sequence of buckets sorted ascending by Start
type AggregatedSeries []Bucket

// Summary holds the KPIs derived from an AggregatedSeries
type Summary struct {
	Total            float64 `json:"total"`
	AveragePerBucket float64 `json:"average_per_bucket"`
	Min              Bucket  `json:"min_bucket"`
	Max              Bucket  `json:"max_bucket"`
	Buckets          int     `json:"buckets"`
}

// Sum returns the sum of all observation values
func (s Series) Sum() float64 {
	total := 0.0
	for _, o := range s {
		total += o.Value
	}
	return total
}

// Bounds returns the dates of the first and last observations.
// ok is false for an empty series.
func (s Series) Bounds() (first, last time.Time, ok bool) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return DateOf(s[0].Timestamp), DateOf(s[len(s)-1].Timestamp), true
}

// Sum returns the sum of all bucket totals
func (a AggregatedSeries) Sum() float64 {
	total := 0.0
	for _, b := range a {
		total += b.Total
	}
	return total
}

// DateOf returns the calendar date of t (in t's own location) as UTC midnight
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
