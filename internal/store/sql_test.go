package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/i474232898/weather-map/internal/weather"
)

func openTestDB(t *testing.T) *SQLSource {
	t.Helper()
	src, err := Open(context.Background(), "", filepath.Join(t.TempDir(), "weather.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestResolveDriver(t *testing.T) {
	tests := []struct {
		driver, dsn, want string
		wantErr           bool
	}{
		{"", "weather.db", DriverSQLite, false},
		{"", "postgres://u:p@localhost:5432/weather", DriverPostgres, false},
		{"sqlite3", "x.db", DriverSQLite, false},
		{"postgres", "host=localhost", DriverPostgres, false},
		{"mysql", "x", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveDriver(tt.driver, tt.dsn)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedDriver) {
				t.Fatalf("ResolveDriver(%q): expected ErrUnsupportedDriver, got %v", tt.driver, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ResolveDriver(%q, %q) = %q, %v; want %q", tt.driver, tt.dsn, got, err, tt.want)
		}
	}
}

func TestValidateTable(t *testing.T) {
	if err := ValidateTable("all_weather_data"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, bad := range []string{"", "1table", "weather; DROP TABLE x", "a-b"} {
		if err := ValidateTable(bad); !errors.Is(err, ErrInvalidTable) {
			t.Fatalf("ValidateTable(%q): expected ErrInvalidTable, got %v", bad, err)
		}
	}
}

func TestSQLSinkRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestDB(t)

	sink, err := NewSQLSink(ctx, src, "all_weather_data")
	if err != nil {
		t.Fatalf("NewSQLSink: %v", err)
	}

	want := []weather.Record{
		{Latitude: 48.85, Longitude: 2.35, City: "Paris", Timestamp: 1685620800, TemperatureMax: 21.5, CountryCode: "FR"},
		{Latitude: 52.52, Longitude: 13.4, City: "Berlin", Timestamp: 1685624400, TemperatureMax: 18, CountryCode: "DE"},
		{Latitude: 30.04, Longitude: 31.24, City: "Cairo", Timestamp: 1685628000, TemperatureMax: 38.2, CountryCode: "EG"},
	}
	for _, rec := range want {
		if err := sink.Write(ctx, rec); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	got, err := src.LoadRecords(ctx, "all_weather_data", 0)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	limited, err := src.LoadRecords(ctx, "all_weather_data", 2)
	if err != nil {
		t.Fatalf("LoadRecords with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 records with limit, got %d", len(limited))
	}
}

func TestLoadRecordsSkipsIncompleteRows(t *testing.T) {
	ctx := context.Background()
	src := openTestDB(t)

	if err := src.EnsureSchema(ctx, "all_weather_data"); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	_, err := src.db.ExecContext(ctx, `INSERT INTO all_weather_data (City, country_code, lat, long, datetime, Temp_max)
		VALUES ('Ghost', 'XX', NULL, 1.0, 100, 5.0), ('Real', 'YY', 1.0, 2.0, 100, 5.0)`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := src.LoadRecords(ctx, "all_weather_data", 0)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(got) != 1 || got[0].City != "Real" {
		t.Fatalf("expected only the complete row, got %+v", got)
	}
}

func TestLoadRecordsEmptyTable(t *testing.T) {
	ctx := context.Background()
	src := openTestDB(t)

	if err := src.EnsureSchema(ctx, "all_weather_data"); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	got, err := src.LoadRecords(ctx, "all_weather_data", 0)
	if err != nil {
		t.Fatalf("expected empty table to load without error, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected an empty, non-nil slice, got %#v", got)
	}
	if _, err := src.LoadRecords(ctx, "missing_table", 0); err == nil {
		t.Fatalf("expected error for missing table")
	}
}

func TestLoadRecordsSkipsNonFiniteRows(t *testing.T) {
	ctx := context.Background()
	src := openTestDB(t)

	if err := src.EnsureSchema(ctx, "all_weather_data"); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	// SQLite reads 9e999 back as +Inf.
	_, err := src.db.ExecContext(ctx, `INSERT INTO all_weather_data (City, country_code, lat, long, datetime, Temp_max)
		VALUES ('Hot', 'XX', 1.0, 1.0, 100, 9e999),
		       ('Far', 'XX', -9e999, 1.0, 100, 5.0),
		       ('Real', 'YY', 1.0, 2.0, 100, 5.0)`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := src.LoadRecords(ctx, "all_weather_data", 0)
	if err != nil {
		t.Fatalf("LoadRecords: %v", err)
	}
	if len(got) != 1 || got[0].City != "Real" {
		t.Fatalf("expected only the finite row, got %+v", got)
	}
}
