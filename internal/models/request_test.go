package models

import (
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/tsexplorer/internal/timeseries"
)

func TestExploreRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ExploreRequest
		wantErr bool
	}{
		{name: "dataset only", req: ExploreRequest{Dataset: "default"}},
		{name: "missing dataset", req: ExploreRequest{}, wantErr: true},
		{name: "full range", req: ExploreRequest{Dataset: "d", StartDate: "2024-01-01", EndDate: "2024-03-31", Granularity: "monthly"}},
		{name: "rfc3339", req: ExploreRequest{Dataset: "d", StartDate: "2024-01-01T00:00:00Z"}},
		{name: "same day", req: ExploreRequest{Dataset: "d", StartDate: "2024-01-01", EndDate: "2024-01-01"}},
		{name: "bad start", req: ExploreRequest{Dataset: "d", StartDate: "01/02/2024"}, wantErr: true},
		{name: "bad end", req: ExploreRequest{Dataset: "d", EndDate: "tomorrow"}, wantErr: true},
		{name: "end before start", req: ExploreRequest{Dataset: "d", StartDate: "2024-02-01", EndDate: "2024-01-01"}, wantErr: true},
		{name: "bad granularity", req: ExploreRequest{Dataset: "d", Granularity: "hourly"}, wantErr: true},
		{name: "negative limit", req: ExploreRequest{Dataset: "d", TableLimit: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var fe *fiber.Error
				if !errors.As(err, &fe) || fe.Code != fiber.StatusBadRequest {
					t.Errorf("expected 400 fiber.Error, got %v", err)
				}
			}
		})
	}
}

func TestExploreRequest_ParsedFields(t *testing.T) {
	req := ExploreRequest{Dataset: "d", StartDate: "2024-01-01", EndDate: "2024-03-31", Granularity: "Q"}
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}

	if req.StartParsed == nil || !req.StartParsed.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", req.StartParsed)
	}
	if req.EndParsed == nil || !req.EndParsed.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end %v", req.EndParsed)
	}
	if req.GranularityParsed != timeseries.Quarterly {
		t.Errorf("expected quarterly, got %s", req.GranularityParsed)
	}

	empty := ExploreRequest{Dataset: "d"}
	if err := empty.Validate(); err != nil {
		t.Fatal(err)
	}
	if empty.StartParsed != nil || empty.EndParsed != nil || empty.GranularityParsed != "" {
		t.Error("blank fields should stay unset")
	}
}
