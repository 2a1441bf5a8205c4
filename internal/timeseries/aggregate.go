package timeseries

import (
	"errors"
	"sort"
	"time"
)

// ErrEmptyInput is returned by Summarize for an aggregated series with no buckets.
// Callers are expected to check for an empty range before aggregating, so
// seeing this error means that guard was skipped.
var ErrEmptyInput = errors.New("timeseries: summarize called with no buckets")

// FilterRange returns the observations whose calendar date lies in [start, end],
// inclusive on both ends. The result may be empty.
func FilterRange(series Series, start, end time.Time) Series {
	from := DateOf(start)
	to := DateOf(end)

	filtered := make(Series, 0, len(series))
	for _, o := range series {
		d := DateOf(o.Timestamp)
		if d.Before(from) || d.After(to) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

// Aggregate sums observations into calendar buckets of the given granularity.
// Buckets are anchored to calendar boundaries, only periods holding at least
// one observation are emitted, and the result is ascending by bucket start.
// Auto is resolved against the span of the series itself.
func Aggregate(series Series, g Granularity) AggregatedSeries {
	if len(series) == 0 {
		return AggregatedSeries{}
	}
	if !g.IsConcrete() {
		first, last, _ := series.Bounds()
		g = SelectGranularity(first, last, Auto)
	}

	index := make(map[time.Time]int)
	buckets := make(AggregatedSeries, 0)
	sorted := true

	for _, o := range series {
		start := Truncate(o.Timestamp, g)
		if i, ok := index[start]; ok {
			buckets[i].Total += o.Value
			continue
		}
		if n := len(buckets); n > 0 && start.Before(buckets[n-1].Start) {
			sorted = false
		}
		index[start] = len(buckets)
		buckets = append(buckets, Bucket{Start: start, Total: o.Value})
	}

	if !sorted {
		sort.Slice(buckets, func(i, j int) bool {
			return buckets[i].Start.Before(buckets[j].Start)
		})
	}
	return buckets
}

// Summarize computes total, average per bucket and the min/max buckets.
// Extremes are found by a single ascending scan with strict comparisons, so
// the earliest bucket wins a tie.
func Summarize(agg AggregatedSeries) (Summary, error) {
	if len(agg) == 0 {
		return Summary{}, ErrEmptyInput
	}

	summary := Summary{
		Min:     agg[0],
		Max:     agg[0],
		Buckets: len(agg),
	}
	for _, b := range agg {
		summary.Total += b.Total
		if b.Total < summary.Min.Total {
			summary.Min = b
		}
		if b.Total > summary.Max.Total {
			summary.Max = b
		}
	}
	summary.AveragePerBucket = summary.Total / float64(len(agg))

	return summary, nil
}
