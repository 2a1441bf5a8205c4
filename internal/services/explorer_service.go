package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/soltixdb/tsexplorer/internal/cache"
	"github.com/soltixdb/tsexplorer/internal/chart"
	"github.com/soltixdb/tsexplorer/internal/datasource"
	"github.com/soltixdb/tsexplorer/internal/logging"
	"github.com/soltixdb/tsexplorer/internal/models"
	"github.com/soltixdb/tsexplorer/internal/queue"
	"github.com/soltixdb/tsexplorer/internal/timeseries"
	"github.com/soltixdb/tsexplorer/internal/utils"
)

// EmptyRangeMessage is returned when no observation falls in the selected range
const EmptyRangeMessage = "No data in the selected date range. Adjust the range."

// ExplorerOptions holds the dashboard defaults
type ExplorerOptions struct {
	DefaultGranularity timeseries.Granularity
	MaxTableRows       int
}

// ExplorerService runs the exploration pipeline over stored datasets
type ExplorerService struct {
	logger   *logging.Logger
	store    *DatasetStore
	cache    *cache.Store
	emitter  *queue.Emitter
	renderer *chart.Renderer
	opts     ExplorerOptions
}

// NewExplorerService creates a new ExplorerService. cache and emitter may be nil.
func NewExplorerService(logger *logging.Logger, store *DatasetStore, cacheStore *cache.Store, emitter *queue.Emitter, opts ExplorerOptions) *ExplorerService {
	if opts.DefaultGranularity == "" {
		opts.DefaultGranularity = timeseries.Auto
	}
	return &ExplorerService{
		logger:   logger,
		store:    store,
		cache:    cacheStore,
		emitter:  emitter,
		renderer: chart.NewRenderer(),
		opts:     opts,
	}
}

// BucketView is one aggregated period
type BucketView struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// KPIs are the headline metrics of an exploration
type KPIs struct {
	Total            float64    `json:"total"`
	TotalLabel       string     `json:"total_label"`
	AveragePerBucket float64    `json:"average_per_bucket"`
	AverageLabel     string     `json:"average_label"`
	Min              BucketView `json:"min"`
	MinLabel         string     `json:"min_label"`
	Max              BucketView `json:"max"`
	MaxLabel         string     `json:"max_label"`
	Buckets          int        `json:"buckets"`
}

// TableView is the filtered raw table
type TableView struct {
	Columns   []string         `json:"columns"`
	Rows      []datasource.Row `json:"rows"`
	Total     int              `json:"total"`
	Truncated bool             `json:"truncated"`
}

// ExploreResult is the full response of one exploration
type ExploreResult struct {
	Dataset           string           `json:"dataset"`
	DateColumn        string           `json:"date_column"`
	ValueColumn       string           `json:"value_column"`
	NumericColumns    []string         `json:"numeric_columns"`
	StartDate         string           `json:"start_date"`
	EndDate           string           `json:"end_date"`
	SpanDays          int              `json:"span_days"`
	GranularityChoice string           `json:"granularity_choice"`
	Granularity       string           `json:"granularity"`
	GranularityLabel  string           `json:"granularity_label"`
	Empty             bool             `json:"empty"`
	Message           string           `json:"message,omitempty"`
	KPIs              *KPIs            `json:"kpis,omitempty"`
	Buckets           []BucketView     `json:"buckets"`
	Chart             *chart.LineChart `json:"chart,omitempty"`
	Table             *TableView       `json:"table,omitempty"`
	Stats             datasource.Stats `json:"stats"`
	Cached            bool             `json:"cached"`
}

// cacheParams identifies a result in the cache
type cacheParams struct {
	// Generation changes on every reload so results computed on a replaced
	// table never land under a live key
	Generation   int64  `json:"n"`
	DateColumn   string `json:"d"`
	ValueColumn  string `json:"v"`
	Start        string `json:"s"`
	End          string `json:"e"`
	Granularity  string `json:"g"`
	IncludeTable bool   `json:"t"`
	TableLimit   int    `json:"l"`
}

// Explore runs load, column selection, range filter, granularity selection,
// aggregation, summary and chart rendering for one request.
// input must have been validated.
func (s *ExplorerService) Explore(ctx context.Context, input *models.ExploreRequest) (*ExploreResult, error) {
	startTime := time.Now()
	ctx = logging.WithDatasetID(ctx, input.Dataset)

	ds, err := s.store.Get(input.Dataset)
	if err != nil {
		return nil, err
	}
	loc := s.store.Location()

	cols, numeric, err := datasource.SelectColumns(ds.Table, input.DateColumn, input.ValueColumn, loc)
	if err != nil {
		return nil, columnError(err, numeric)
	}

	series, stats, err := datasource.BuildSeries(ds.Table, cols.Date, cols.Value, loc)
	if err != nil {
		return nil, columnError(err, numeric)
	}
	if stats.Dropped() > 0 {
		logging.DebugCtx(ctx, "Dropped unparseable rows",
			"dropped_dates", stats.DroppedDates,
			"dropped_values", stats.DroppedValues)
	}

	first, last, hasDates := series.Bounds()
	start, end := resolveRange(input, first, last, hasDates)
	choice := input.GranularityParsed
	if choice == "" {
		choice = s.opts.DefaultGranularity
	}
	tableLimit := s.tableLimit(input)

	params := cacheParams{
		Generation:   ds.LoadedAt.UnixNano(),
		DateColumn:   cols.Date,
		ValueColumn:  cols.Value,
		Start:        start.Format(models.DateLayout),
		End:          end.Format(models.DateLayout),
		Granularity:  string(choice),
		IncludeTable: input.IncludeTable,
		TableLimit:   tableLimit,
	}
	if cached := s.fromCache(ctx, ds.ID, params); cached != nil {
		s.emitCompleted(ctx, cached)
		return cached, nil
	}

	run, err := timeseries.Explore(series, start, end, choice)
	if err != nil {
		logging.ErrorCtx(ctx, "Pipeline invariant violated", "error", err)
		return nil, NewServiceErrorWithDetails(CodeInternal, "Failed to aggregate series", map[string]interface{}{
			"error": err.Error(),
		})
	}

	result := &ExploreResult{
		Dataset:           ds.ID,
		DateColumn:        cols.Date,
		ValueColumn:       cols.Value,
		NumericColumns:    numeric,
		StartDate:         params.Start,
		EndDate:           params.End,
		SpanDays:          run.SpanDays,
		GranularityChoice: string(run.Choice),
		Granularity:       string(run.Granularity),
		GranularityLabel:  run.Granularity.Label(),
		Empty:             run.Empty,
		Buckets:           make([]BucketView, 0, len(run.Buckets)),
		Stats:             stats,
	}

	if run.Empty {
		result.Message = EmptyRangeMessage
	} else {
		for _, b := range run.Buckets {
			result.Buckets = append(result.Buckets, bucketView(b))
		}
		result.KPIs = buildKPIs(run.Summary, run.Granularity)
		result.Chart = s.renderer.Render(run.Buckets, run.Summary.AveragePerBucket, cols.Value, run.Granularity)
	}

	if input.IncludeTable {
		table, err := s.filteredTable(ds, cols.Date, start, end, tableLimit)
		if err != nil {
			return nil, columnError(err, numeric)
		}
		result.Table = table
	}

	s.toCache(ctx, ds.ID, params, result)
	s.emitCompleted(ctx, result)

	logging.InfoCtx(ctx, "Exploration completed",
		"value_column", cols.Value,
		"granularity", result.Granularity,
		"buckets", len(result.Buckets),
		"empty", result.Empty,
		"latency_ms", time.Since(startTime).Milliseconds())

	return result, nil
}

// ExportCSV writes the raw rows of the selected range as CSV, header first
func (s *ExplorerService) ExportCSV(ctx context.Context, input *models.ExploreRequest, w io.Writer) (int, error) {
	ds, err := s.store.Get(input.Dataset)
	if err != nil {
		return 0, err
	}
	loc := s.store.Location()

	dateCol := input.DateColumn
	if dateCol == "" {
		dateCol = ds.DateColumn
	}
	if !ds.Table.HasColumn(dateCol) {
		return 0, NewServiceError(CodeInvalidColumn, fmt.Sprintf("unknown column: date column %q", dateCol))
	}

	first, last, ok := datasource.DateBounds(ds.Table, dateCol, loc)
	start, end := resolveRange(input, first, last, ok)

	rows, err := datasource.FilterRows(ds.Table, dateCol, start, end, loc)
	if err != nil {
		return 0, columnError(err, nil)
	}

	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(ds.Table.Columns); err != nil {
		return 0, err
	}

	record := make([]string, len(ds.Table.Columns))
	for i, row := range rows {
		if i%utils.ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return i, err
			}
		}
		for j, col := range ds.Table.Columns {
			record[j] = cellString(row[col])
		}
		if err := csvWriter.Write(record); err != nil {
			return i, err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return len(rows), err
	}

	logging.InfoCtx(ctx, "Export completed", "dataset_id", ds.ID, "rows", len(rows))
	return len(rows), nil
}

// resolveRange fills a missing start or end with the bounds of the chosen
// date column. With no parseable dates at all the range collapses onto today.
func resolveRange(input *models.ExploreRequest, first, last time.Time, ok bool) (time.Time, time.Time) {
	if !ok {
		today := timeseries.DateOf(time.Now())
		first, last = today, today
	}

	start, end := first, last
	if input.StartParsed != nil {
		start = *input.StartParsed
	}
	if input.EndParsed != nil {
		end = *input.EndParsed
	}
	return timeseries.DateOf(start), timeseries.DateOf(end)
}

func (s *ExplorerService) tableLimit(input *models.ExploreRequest) int {
	if !input.IncludeTable {
		return 0
	}
	limit := s.opts.MaxTableRows
	if input.TableLimit > 0 && (limit == 0 || input.TableLimit < limit) {
		limit = input.TableLimit
	}
	return limit
}

func (s *ExplorerService) filteredTable(ds *Dataset, dateCol string, start, end time.Time, limit int) (*TableView, error) {
	rows, err := datasource.FilterRows(ds.Table, dateCol, start, end, s.store.Location())
	if err != nil {
		return nil, err
	}

	view := &TableView{
		Columns: ds.Table.Columns,
		Rows:    rows,
		Total:   len(rows),
	}
	if limit > 0 && len(rows) > limit {
		view.Rows = rows[:limit]
		view.Truncated = true
	}
	return view, nil
}

func (s *ExplorerService) fromCache(ctx context.Context, dataset string, params cacheParams) *ExploreResult {
	if s.cache == nil {
		return nil
	}

	key, err := s.cache.Key(dataset, params)
	if err != nil {
		return nil
	}

	var result ExploreResult
	hit, err := s.cache.Get(ctx, key, &result)
	if err != nil {
		logging.WarnCtx(ctx, "Cache read failed", "error", err)
		return nil
	}
	if !hit {
		return nil
	}

	result.Cached = true
	logging.DebugCtx(ctx, "Cache hit", "key", key)
	return &result
}

func (s *ExplorerService) toCache(ctx context.Context, dataset string, params cacheParams, result *ExploreResult) {
	if s.cache == nil {
		return
	}

	key, err := s.cache.Key(dataset, params)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, result); err != nil {
		logging.WarnCtx(ctx, "Cache write failed", "error", err)
	}
}

func (s *ExplorerService) emitCompleted(ctx context.Context, result *ExploreResult) {
	e := queue.Event{
		Type:        queue.EventExploreCompleted,
		DatasetID:   result.Dataset,
		Granularity: result.Granularity,
		Buckets:     len(result.Buckets),
		Empty:       result.Empty,
	}
	if result.KPIs != nil {
		e.Total = result.KPIs.Total
	}
	s.emitter.Emit(ctx, e)
}

func bucketView(b timeseries.Bucket) BucketView {
	return BucketView{Date: b.Start.Format(models.DateLayout), Total: b.Total}
}

func buildKPIs(sum *timeseries.Summary, g timeseries.Granularity) *KPIs {
	minView, maxView := bucketView(sum.Min), bucketView(sum.Max)
	return &KPIs{
		Total:            sum.Total,
		TotalLabel:       chart.FormatCurrency(sum.Total),
		AveragePerBucket: sum.AveragePerBucket,
		AverageLabel:     fmt.Sprintf("%s per %s", chart.FormatCurrency(sum.AveragePerBucket), g.Label()),
		Min:              minView,
		MinLabel:         fmt.Sprintf("%s on %s", chart.FormatCurrency(minView.Total), minView.Date),
		Max:              maxView,
		MaxLabel:         fmt.Sprintf("%s on %s", chart.FormatCurrency(maxView.Total), maxView.Date),
		Buckets:          sum.Buckets,
	}
}

// cellString renders a raw cell for CSV output
func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(models.DateLayout)
		}
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// IsServiceError reports whether err carries a ServiceError with code
func IsServiceError(err error, code string) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Code == code
}
