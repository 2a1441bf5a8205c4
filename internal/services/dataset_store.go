package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/tsexplorer/internal/datasource"
	"github.com/soltixdb/tsexplorer/internal/models"
)

// DefaultDatasetID names the dataset loaded from the configured source at startup
const DefaultDatasetID = "default"

// Dataset is a loaded table plus the profile computed at load time.
// Table is read-only after load.
type Dataset struct {
	ID             string
	Source         string
	Table          *datasource.Table
	DateColumn     string
	NumericColumns []string
	MinDate        time.Time
	MaxDate        time.Time
	HasDates       bool
	LoadedAt       time.Time
}

// Response converts the dataset to its API representation
func (d *Dataset) Response() models.DatasetResponse {
	resp := models.DatasetResponse{
		ID:             d.ID,
		Name:           d.Table.Name,
		Source:         d.Source,
		Columns:        d.Table.Columns,
		Rows:           len(d.Table.Rows),
		DateColumn:     d.DateColumn,
		NumericColumns: d.NumericColumns,
		LoadedAt:       d.LoadedAt.UTC().Format(time.RFC3339),
	}
	if resp.NumericColumns == nil {
		resp.NumericColumns = []string{}
	}
	if d.HasDates {
		resp.MinDate = d.MinDate.Format(models.DateLayout)
		resp.MaxDate = d.MaxDate.Format(models.DateLayout)
	}
	return resp
}

// DatasetStore is an in-memory registry of loaded datasets
type DatasetStore struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	loc      *time.Location
}

// NewDatasetStore creates a store; loc interprets naive dates
func NewDatasetStore(loc *time.Location) *DatasetStore {
	if loc == nil {
		loc = time.UTC
	}
	return &DatasetStore{
		datasets: make(map[string]*Dataset),
		loc:      loc,
	}
}

// Location returns the zone used for naive dates
func (s *DatasetStore) Location() *time.Location {
	return s.loc
}

// Put profiles table and stores it under id, replacing any previous dataset.
// An empty id gets a new UUID.
func (s *DatasetStore) Put(id, source string, table *datasource.Table) *Dataset {
	if id == "" {
		id = uuid.New().String()
	}

	ds := &Dataset{
		ID:             id,
		Source:         source,
		Table:          table,
		DateColumn:     datasource.DetectDateColumn(table, s.loc),
		NumericColumns: datasource.DetectNumericColumns(table),
		LoadedAt:       time.Now(),
	}
	ds.MinDate, ds.MaxDate, ds.HasDates = datasource.DateBounds(table, ds.DateColumn, s.loc)

	s.mu.Lock()
	s.datasets[id] = ds
	s.mu.Unlock()

	return ds
}

// Get returns the dataset with id
func (s *DatasetStore) Get(id string) (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return nil, NewServiceError(CodeDatasetNotFound, fmt.Sprintf("dataset %q not found; upload a CSV or configure a source", id))
	}
	return ds, nil
}

// Delete removes the dataset with id
func (s *DatasetStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return NewServiceError(CodeDatasetNotFound, fmt.Sprintf("dataset %q not found", id))
	}
	delete(s.datasets, id)
	return nil
}

// List returns all datasets ordered by load time
func (s *DatasetStore) List() []*Dataset {
	s.mu.RLock()
	out := make([]*Dataset, 0, len(s.datasets))
	for _, ds := range s.datasets {
		out = append(out, ds)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].LoadedAt.Equal(out[j].LoadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].LoadedAt.Before(out[j].LoadedAt)
	})
	return out
}

// Len returns the number of datasets
func (s *DatasetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets)
}
