package datasource

import (
	"fmt"
	"io"
	"strings"

	"github.com/soltixdb/tsexplorer/internal/config"
)

// FromConfig builds the configured default source. It returns nil, nil when
// the source type is "none". progress is passed to file sources.
func FromConfig(cfg config.SourceConfig, progress io.Writer) (Source, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "csv":
		candidates := append([]string{}, cfg.Paths...)
		candidates = append(candidates, DefaultCandidates(cfg.FileName)...)
		src := NewFileSource(candidates...)
		src.Progress = progress
		return src, nil
	case "mysql":
		return NewMySQLSource(cfg.DSN, cfg.Table, cfg.Query), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s (supported: csv, mysql, none)", cfg.Type)
	}
}

// Describe returns a short human-readable label for a source
func Describe(src Source) string {
	switch s := src.(type) {
	case *CSVSource:
		if s.Reader != nil {
			return "upload:" + s.Name
		}
		if p, ok := s.Resolve(); ok {
			return "file:" + p
		}
		return "file"
	case *MySQLSource:
		if s.Query != "" {
			return "mysql:query"
		}
		return "mysql:" + s.Table
	default:
		return fmt.Sprintf("%T", src)
	}
}
