package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-map/internal/common"
	"github.com/i474232898/weather-map/internal/weather"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var (
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	ErrInvalidTable      = errors.New("invalid table name")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ResolveDriver returns the driver to use for dsn. An explicit driver wins;
// otherwise postgres URLs select pgx and everything else is a SQLite file.
func ResolveDriver(driver, dsn string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "":
		if common.HasAny(dsn, "postgres://", "postgresql://") {
			return DriverPostgres, nil
		}
		return DriverSQLite, nil
	case DriverSQLite, "sqlite3":
		return DriverSQLite, nil
	case DriverPostgres, "postgres", "postgresql":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// ValidateTable checks that name is a plain SQL identifier.
func ValidateTable(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, name)
	}
	return nil
}

// SQLSource is the persistent weather table.
type SQLSource struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*SQLSource, error) {
	drv, err := ResolveDriver(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(drv, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", drv, err)
	}
	if drv == DriverSQLite {
		// A single writer avoids SQLITE_BUSY from the collector.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", drv, err)
	}

	return &SQLSource{db: db, driver: drv}, nil
}

// Driver returns the resolved driver name.
func (s *SQLSource) Driver() string {
	return s.driver
}

// Close closes the underlying database handle.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// LoadRecords reads the whole table in one query. A positive limit caps the
// number of rows. Rows with NULL, NaN or infinite coordinates or temperature
// are skipped. An empty table yields an empty slice.
func (s *SQLSource) LoadRecords(ctx context.Context, table string, limit int) ([]weather.Record, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}

	query := "SELECT lat, long, City, datetime, Temp_max, country_code FROM " + table
	if limit > 0 {
		query += " LIMIT " + strconv.Itoa(limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var (
		records []weather.Record
		skipped int
	)
	for rows.Next() {
		var (
			lat, lon, temp sql.NullFloat64
			city, country  sql.NullString
			ts             sql.NullInt64
		)
		if err := rows.Scan(&lat, &lon, &city, &ts, &temp, &country); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		if !lat.Valid || !lon.Valid || !temp.Valid || !ts.Valid {
			skipped++
			continue
		}
		rec := weather.Record{
			Latitude:       lat.Float64,
			Longitude:      lon.Float64,
			City:           city.String,
			Timestamp:      ts.Int64,
			TemperatureMax: temp.Float64,
			CountryCode:    country.String,
		}
		if !rec.Plottable() {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}

	if skipped > 0 {
		log.Printf("INFO: skipped %d rows with missing or non-finite values in %s", skipped, table)
	}
	if len(records) == 0 {
		log.Printf("INFO: 0 records in %s", table)
		return []weather.Record{}, nil
	}
	return records, nil
}

// EnsureSchema creates the weather table if it does not exist.
func (s *SQLSource) EnsureSchema(ctx context.Context, table string) error {
	if err := ValidateTable(table); err != nil {
		return err
	}

	realType, intType := "REAL", "INTEGER"
	if s.driver == DriverPostgres {
		realType, intType = "DOUBLE PRECISION", "BIGINT"
	}

	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	City TEXT,
	country_code TEXT,
	lat %s,
	long %s,
	datetime %s,
	Temp_max %s
)`, table, realType, realType, intType, realType)

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

// InsertRecord appends one row to the weather table.
func (s *SQLSource) InsertRecord(ctx context.Context, table string, rec weather.Record) error {
	if err := ValidateTable(table); err != nil {
		return err
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (City, country_code, lat, long, datetime, Temp_max) VALUES (%s)",
		table, s.placeholders(6),
	)
	_, err := s.db.ExecContext(ctx, stmt,
		rec.City, rec.CountryCode, rec.Latitude, rec.Longitude, rec.Timestamp, rec.TemperatureMax)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (s *SQLSource) placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		if s.driver == DriverPostgres {
			ph[i] = "$" + strconv.Itoa(i+1)
		} else {
			ph[i] = "?"
		}
	}
	return strings.Join(ph, ", ")
}

// SQLSink writes collector records into the weather table.
type SQLSink struct {
	src   *SQLSource
	table string
}

// NewSQLSink creates the table if needed and returns a sink writing to it.
func NewSQLSink(ctx context.Context, src *SQLSource, table string) (*SQLSink, error) {
	if err := src.EnsureSchema(ctx, table); err != nil {
		return nil, err
	}
	return &SQLSink{src: src, table: table}, nil
}

func (s *SQLSink) Name() string {
	return "sql:" + s.table
}

func (s *SQLSink) Write(ctx context.Context, rec weather.Record) error {
	return s.src.InsertRecord(ctx, s.table, rec)
}
