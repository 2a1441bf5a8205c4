package models

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/tsexplorer/internal/timeseries"
)

// DateLayout is the accepted and emitted calendar date format
const DateLayout = "2006-01-02"

// ExploreRequest represents one exploration of a dataset.
// Every field is optional; blanks fall back to detected or configured defaults.
type ExploreRequest struct {
	Dataset      string `json:"-"`
	DateColumn   string `json:"date_column,omitempty" query:"date_column"`
	ValueColumn  string `json:"value_column,omitempty" query:"value_column"`
	StartDate    string `json:"start_date,omitempty" query:"start_date"`
	EndDate      string `json:"end_date,omitempty" query:"end_date"`
	Granularity  string `json:"granularity,omitempty" query:"granularity"`
	IncludeTable bool   `json:"include_table,omitempty" query:"include_table"`
	TableLimit   int    `json:"table_limit,omitempty" query:"table_limit"`

	// Parsed fields, set by Validate
	StartParsed       *time.Time             `json:"-"`
	EndParsed         *time.Time             `json:"-"`
	GranularityParsed timeseries.Granularity `json:"-"`
}

// Validate checks the request and fills the parsed fields
func (r *ExploreRequest) Validate() error {
	if strings.TrimSpace(r.Dataset) == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "dataset is required",
		}
	}

	if r.StartDate != "" {
		t, err := ParseDate(r.StartDate)
		if err != nil {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "start_date must be YYYY-MM-DD or RFC3339",
			}
		}
		r.StartParsed = &t
	}

	if r.EndDate != "" {
		t, err := ParseDate(r.EndDate)
		if err != nil {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "end_date must be YYYY-MM-DD or RFC3339",
			}
		}
		r.EndParsed = &t
	}

	if r.StartParsed != nil && r.EndParsed != nil &&
		timeseries.DateOf(*r.EndParsed).Before(timeseries.DateOf(*r.StartParsed)) {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "end_date must not be before start_date",
		}
	}

	if r.Granularity != "" {
		g, err := timeseries.ParseGranularity(r.Granularity)
		if err != nil {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "granularity must be one of: auto, daily, weekly, monthly, quarterly, yearly",
			}
		}
		r.GranularityParsed = g
	}

	if r.TableLimit < 0 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "table_limit must be a non-negative integer",
		}
	}

	return nil
}

// ParseDate accepts a calendar date or an RFC3339 timestamp
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
