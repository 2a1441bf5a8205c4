package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/tsexplorer/internal/services"
)

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	content := "Month,Sales\n2024-01-01,10\n2024-01-20,20\n2024-02-15,5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_Text(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := options{file: writeCSV(t), granularity: "monthly", table: true, limit: 2, quiet: true}

	require.NoError(t, run(context.Background(), opts, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "Value column:  Sales")
	assert.Contains(t, out, "Total:         $35.00")
	assert.Contains(t, out, "Max bucket:    $30.00 on 2024-01-01")
	assert.Contains(t, out, "Sales - Monthly sum")
	assert.Contains(t, out, "--- Avg (Monthly) = $17.50")
	assert.Contains(t, out, "(2 of 3 rows shown)")
}

func TestRun_JSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := options{file: writeCSV(t), start: "2023-01-01", end: "2023-02-01", jsonOutput: true, quiet: true}

	require.NoError(t, run(context.Background(), opts, &stdout, &stderr))

	var result services.ExploreResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.True(t, result.Empty)
	assert.Equal(t, services.EmptyRangeMessage, result.Message)
}

func TestRun_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), options{file: filepath.Join(t.TempDir(), "missing.csv"), quiet: true}, &stdout, &stderr)
	assert.True(t, services.IsServiceError(err, services.CodeDatasetNotFound), "got %v", err)

	err = run(context.Background(), options{file: writeCSV(t), granularity: "hourly", quiet: true}, &stdout, &stderr)
	assert.Error(t, err)

	err = run(context.Background(), options{file: writeCSV(t), valueColumn: "Month", quiet: true}, &stdout, &stderr)
	assert.True(t, services.IsServiceError(err, services.CodeInvalidColumn), "got %v", err)
}
