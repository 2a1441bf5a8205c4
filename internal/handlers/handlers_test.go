package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/tsexplorer/internal/cache"
	"github.com/soltixdb/tsexplorer/internal/datasource"
	"github.com/soltixdb/tsexplorer/internal/logging"
	"github.com/soltixdb/tsexplorer/internal/models"
	"github.com/soltixdb/tsexplorer/internal/services"
	"github.com/soltixdb/tsexplorer/internal/timeseries"
)

const salesCSV = `Date,Sales,Store
2024-01-01,10,a
2024-01-02,20,b
2024-02-15,5,a
`

func newTestApp(t *testing.T) (*fiber.App, *Handler) {
	t.Helper()

	logger := logging.NewDevelopment()
	store := services.NewDatasetStore(time.UTC)
	cacheStore := cache.NewStore(cache.NewMemoryCache(time.Hour), "test", time.Minute, false)
	t.Cleanup(func() { _ = cacheStore.Close() })

	datasets := services.NewDatasetService(logger, store, cacheStore, nil)
	explorer := services.NewExplorerService(logger, store, cacheStore, nil, services.ExplorerOptions{
		DefaultGranularity: timeseries.Auto,
		MaxTableRows:       100,
	})

	_, err := datasets.Load(t.Context(), services.DefaultDatasetID,
		datasource.NewUploadSource("sales.csv", strings.NewReader(salesCSV)))
	require.NoError(t, err)

	h := New(logger, datasets, explorer)
	app := fiber.New()
	app.Get("/health", h.Health)
	app.Get("/v1/datasets", h.ListDatasets)
	app.Post("/v1/datasets", h.UploadDataset)
	app.Get("/v1/datasets/:dataset", h.GetDataset)
	app.Delete("/v1/datasets/:dataset", h.DeleteDataset)
	app.Get("/v1/datasets/:dataset/explore", h.Explore)
	app.Post("/v1/datasets/:dataset/explore", h.ExplorePost)
	app.Get("/v1/datasets/:dataset/export", h.Export)
	return app, h
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeError(t *testing.T, body []byte) models.ErrorDetail {
	t.Helper()
	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	return errResp.Error
}

func TestHandler_HealthCountsDatasets(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health models.HealthResponse
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, 1, health.Datasets)
}

func TestHandler_Explore(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/v1/datasets/default/explore?granularity=monthly", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var result services.ExploreResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.Equal(t, "Date", result.DateColumn)
	assert.Equal(t, "Sales", result.ValueColumn)
	assert.Equal(t, "monthly", result.Granularity)
	require.Len(t, result.Buckets, 2)
	assert.Equal(t, 30.0, result.Buckets[0].Total)
	require.NotNil(t, result.KPIs)
	assert.Equal(t, 35.0, result.KPIs.Total)
}

func TestHandler_ExplorePost(t *testing.T) {
	app, _ := newTestApp(t)

	payload := `{"start_date":"2025-01-01","end_date":"2025-02-01"}`
	req := httptest.NewRequest("POST", "/v1/datasets/default/explore", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, body := doRequest(t, app, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var result services.ExploreResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.True(t, result.Empty)
	assert.Equal(t, services.EmptyRangeMessage, result.Message)
}

func TestHandler_ExploreErrors(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedCode   string
	}{
		{"unknown dataset", "/v1/datasets/missing/explore", fiber.StatusNotFound, services.CodeDatasetNotFound},
		{"bad granularity", "/v1/datasets/default/explore?granularity=hourly", fiber.StatusBadRequest, "INVALID_REQUEST"},
		{"bad start date", "/v1/datasets/default/explore?start_date=yesterday", fiber.StatusBadRequest, "INVALID_REQUEST"},
		{"reversed range", "/v1/datasets/default/explore?start_date=2024-02-01&end_date=2024-01-01", fiber.StatusBadRequest, "INVALID_REQUEST"},
		{"non numeric column", "/v1/datasets/default/explore?value_column=Store", fiber.StatusBadRequest, services.CodeInvalidColumn},
	}

	app, _ := newTestApp(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.Equal(t, tt.expectedCode, decodeError(t, body).Code)
		})
	}
}

func TestHandler_ExploreNoNumericColumn(t *testing.T) {
	app, _ := newTestApp(t)
	id := uploadCSV(t, app, "names.csv", "Date,Name\n2024-01-01,x\n")

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/v1/datasets/"+id+"/explore", nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, services.CodeNoNumericColumn, decodeError(t, body).Code)
}

func uploadCSV(t *testing.T, app *fiber.App, filename, content string) string {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(UploadFormField, filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/v1/datasets", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, body := doRequest(t, app, req)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	var ds models.DatasetResponse
	require.NoError(t, json.Unmarshal(body, &ds))
	return ds.ID
}

func TestHandler_DatasetLifecycle(t *testing.T) {
	app, _ := newTestApp(t)
	time.Sleep(time.Millisecond)
	id := uploadCSV(t, app, "extra.csv", salesCSV)

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/v1/datasets", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list models.DatasetListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Datasets, 2)
	assert.Equal(t, services.DefaultDatasetID, list.Datasets[0].ID)

	resp, body = doRequest(t, app, httptest.NewRequest("GET", "/v1/datasets/"+id, nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ds models.DatasetResponse
	require.NoError(t, json.Unmarshal(body, &ds))
	assert.Equal(t, "extra.csv", ds.Name)
	assert.Equal(t, 3, ds.Rows)
	assert.Equal(t, []string{"Sales"}, ds.NumericColumns)

	resp, _ = doRequest(t, app, httptest.NewRequest("DELETE", "/v1/datasets/"+id, nil))
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, body = doRequest(t, app, httptest.NewRequest("GET", "/v1/datasets/"+id, nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, services.CodeDatasetNotFound, decodeError(t, body).Code)
}

func TestHandler_UploadErrors(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doRequest(t, app, httptest.NewRequest("POST", "/v1/datasets", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, body).Code)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_, err := w.CreateFormFile(UploadFormField, "empty.csv")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/v1/datasets", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, body = doRequest(t, app, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, services.CodeInvalidCSV, decodeError(t, body).Code)
}

func TestHandler_Export(t *testing.T) {
	app, _ := newTestApp(t)

	resp, body := doRequest(t, app, httptest.NewRequest("GET", "/v1/datasets/default/export?end_date=2024-01-31", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="default.csv"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "2", resp.Header.Get("X-Row-Count"))
	assert.Equal(t, "Date,Sales,Store\n2024-01-01,10,a\n2024-01-02,20,b\n", string(body))
}

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, statusForCode(services.CodeDatasetNotFound))
	assert.Equal(t, fiber.StatusUnprocessableEntity, statusForCode(services.CodeNoNumericColumn))
	assert.Equal(t, fiber.StatusBadRequest, statusForCode(services.CodeInvalidColumn))
	assert.Equal(t, fiber.StatusBadRequest, statusForCode(services.CodeInvalidCSV))
	assert.Equal(t, fiber.StatusInternalServerError, statusForCode(services.CodeInternal))
}
