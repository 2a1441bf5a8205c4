package timeseries

import "time"

// Result is the outcome of one Explore run
type Result struct {
	Start       time.Time        `json:"start_date"`
	End         time.Time        `json:"end_date"`
	SpanDays    int              `json:"span_days"`
	Choice      Granularity      `json:"granularity_choice"`
	Granularity Granularity      `json:"granularity"`
	Filtered    Series           `json:"-"`
	Buckets     AggregatedSeries `json:"buckets"`
	Summary     *Summary         `json:"summary,omitempty"`
	// Empty is set when no observation falls in the range. Buckets and
	// Summary are left unset in that case.
	Empty bool `json:"empty"`
}

// Explore runs filter, granularity selection, aggregation and summary in order.
// An empty range short-circuits before Aggregate and Summarize.
func Explore(series Series, start, end time.Time, choice Granularity) (*Result, error) {
	result := &Result{
		Start:       DateOf(start),
		End:         DateOf(end),
		SpanDays:    SpanDays(start, end),
		Choice:      choice,
		Granularity: SelectGranularity(start, end, choice),
	}

	result.Filtered = FilterRange(series, start, end)
	if len(result.Filtered) == 0 {
		result.Empty = true
		return result, nil
	}

	result.Buckets = Aggregate(result.Filtered, result.Granularity)

	summary, err := Summarize(result.Buckets)
	if err != nil {
		return nil, err
	}
	result.Summary = &summary

	return result, nil
}
