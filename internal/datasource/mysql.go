package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// MySQLSource loads rows from a MySQL or MariaDB table, or from a custom query
type MySQLSource struct {
	DSN   string
	Table string
	Query string
}

// NewMySQLSource creates a MySQL source. Query takes precedence over Table.
func NewMySQLSource(dsn, table, query string) *MySQLSource {
	return &MySQLSource{DSN: dsn, Table: table, Query: query}
}

// OpenMySQL opens a connection pool; mariadb:// and mysql:// URLs are
// converted to the driver's native DSN
func OpenMySQL(dsn string) (*sql.DB, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("%w: mysql dsn is empty", ErrLoad)
	}
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	user := ""
	pass := ""
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	host := u.Host
	db := strings.TrimPrefix(u.Path, "/")
	if user == "" || host == "" || db == "" {
		return "", fmt.Errorf("incomplete dsn (user/host/db required)")
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC", user, pass, host, db), nil
}

func (s *MySQLSource) statement() (string, error) {
	if s.Query != "" {
		return s.Query, nil
	}
	if !tableNamePattern.MatchString(s.Table) {
		return "", fmt.Errorf("invalid table name %q", s.Table)
	}
	return fmt.Sprintf("SELECT * FROM `%s`", s.Table), nil
}

// Load runs the query and copies the result set into a Table
func (s *MySQLSource) Load(ctx context.Context) (*Table, error) {
	stmt, err := s.statement()
	if err != nil {
		return nil, err
	}

	db, err := OpenMySQL(s.DSN)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", stmt, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	name := s.Table
	if name == "" {
		name = "query"
	}
	table := &Table{Name: name, Columns: columns}

	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s returned no rows", ErrLoad, stmt)
	}
	return table, nil
}
