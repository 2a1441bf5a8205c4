package datasource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
)

// DefaultFileName is the fallback CSV looked up when nothing is uploaded
const DefaultFileName = "RetailSalesHealthPersonalCare.csv"

// CSVSource reads a CSV from an uploaded reader, or from the first existing
// file among Candidates when Reader is nil.
type CSVSource struct {
	Name       string
	Reader     io.Reader
	Candidates []string
	// Progress receives a byte progress bar while a file is read (optional)
	Progress io.Writer
}

// NewUploadSource creates a source reading an uploaded CSV
func NewUploadSource(name string, r io.Reader) *CSVSource {
	return &CSVSource{Name: name, Reader: r}
}

// NewFileSource creates a source reading the first existing candidate path
func NewFileSource(candidates ...string) *CSVSource {
	return &CSVSource{Candidates: candidates}
}

// DefaultCandidates returns the fallback lookup order for fileName:
// next to the executable, in ~/Downloads, then in the working directory.
func DefaultCandidates(fileName string) []string {
	if fileName == "" {
		fileName = DefaultFileName
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), fileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "Downloads", fileName))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, fileName))
	}
	return candidates
}

// Resolve returns the first candidate path that exists
func (s *CSVSource) Resolve() (string, bool) {
	for _, p := range s.Candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Load reads the CSV into a Table
func (s *CSVSource) Load(ctx context.Context) (*Table, error) {
	if s.Reader != nil {
		name := s.Name
		if name == "" {
			name = "upload.csv"
		}
		return readCSV(ctx, name, s.Reader)
	}

	path, ok := s.Resolve()
	if !ok {
		return nil, fmt.Errorf("%w: no CSV provided and none of %s exists", ErrLoad, strings.Join(s.Candidates, ", "))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer func() { _ = file.Close() }()

	var r io.Reader = file
	if s.Progress != nil {
		size := int64(-1)
		if info, err := file.Stat(); err == nil {
			size = info.Size()
		}
		bar := progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(s.Progress),
			progressbar.OptionSetDescription("loading "+filepath.Base(path)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		r = io.TeeReader(file, bar)
	}

	name := s.Name
	if name == "" {
		name = filepath.Base(path)
	}
	return readCSV(ctx, name, r)
}

// ReadCSV parses CSV content with a header row into a Table
func ReadCSV(name string, r io.Reader) (*Table, error) {
	return readCSV(context.Background(), name, r)
}

func readCSV(ctx context.Context, name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", ErrLoad, name)
		}
		return nil, fmt.Errorf("failed to read CSV header of %s: %w", name, err)
	}

	columns := uniqueColumns(header)
	table := &Table{
		Name:    name,
		Columns: columns,
		Rows:    make([]Row, 0, 1024),
	}

	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV %s line %d: %w", name, line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" && len(columns) > 1 {
			continue
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// uniqueColumns trims header names and suffixes duplicates with .1, .2, ...
func uniqueColumns(header []string) []string {
	seen := make(map[string]int, len(header))
	columns := make([]string, len(header))

	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		columns[i] = name
	}
	return columns
}
