package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/soltixdb/tsexplorer/internal/cache"
	"github.com/soltixdb/tsexplorer/internal/datasource"
	"github.com/soltixdb/tsexplorer/internal/logging"
	"github.com/soltixdb/tsexplorer/internal/queue"
)

// DatasetService loads, lists and removes datasets
type DatasetService struct {
	logger  *logging.Logger
	store   *DatasetStore
	cache   *cache.Store
	emitter *queue.Emitter
}

// NewDatasetService creates a new DatasetService. cache and emitter may be nil.
func NewDatasetService(logger *logging.Logger, store *DatasetStore, cacheStore *cache.Store, emitter *queue.Emitter) *DatasetService {
	return &DatasetService{
		logger:  logger,
		store:   store,
		cache:   cacheStore,
		emitter: emitter,
	}
}

// Load reads src and registers it under id (a new UUID when empty)
func (s *DatasetService) Load(ctx context.Context, id string, src datasource.Source) (*Dataset, error) {
	startTime := time.Now()

	table, err := src.Load(ctx)
	if err != nil {
		if errors.Is(err, datasource.ErrLoad) {
			return nil, NewServiceErrorWithDetails(CodeDatasetNotFound, "No input data available", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, NewServiceErrorWithDetails(CodeInvalidCSV, "Failed to read dataset", map[string]interface{}{
			"error": err.Error(),
		})
	}

	ds := s.store.Put(id, datasource.Describe(src), table)
	s.invalidate(ctx, ds.ID)

	s.logger.Info("Dataset loaded",
		"dataset_id", ds.ID,
		"source", ds.Source,
		"rows", len(table.Rows),
		"columns", len(table.Columns),
		"date_column", ds.DateColumn,
		"numeric_columns", ds.NumericColumns,
		"latency_ms", time.Since(startTime).Milliseconds())

	s.emitter.Emit(ctx, queue.Event{
		Type:      queue.EventDatasetLoaded,
		DatasetID: ds.ID,
		Rows:      len(table.Rows),
	})

	return ds, nil
}

// Upload registers an uploaded CSV under a new dataset ID
func (s *DatasetService) Upload(ctx context.Context, filename string, r io.Reader) (*Dataset, error) {
	ds, err := s.Load(ctx, "", datasource.NewUploadSource(filename, r))
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Code == CodeDatasetNotFound {
		// An empty upload is a bad request, not a missing dataset
		svcErr.Code = CodeInvalidCSV
	}
	return ds, err
}

// Get returns a dataset by ID
func (s *DatasetService) Get(id string) (*Dataset, error) {
	return s.store.Get(id)
}

// List returns all datasets
func (s *DatasetService) List() []*Dataset {
	return s.store.List()
}

// Delete removes a dataset and its cached results
func (s *DatasetService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	s.logger.Info("Dataset deleted", "dataset_id", id)
	s.emitter.Emit(ctx, queue.Event{
		Type:      queue.EventDatasetDeleted,
		DatasetID: id,
	})
	return nil
}

func (s *DatasetService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateDataset(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate cached results", "dataset_id", id, "error", err)
	}
}
