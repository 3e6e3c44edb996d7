package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"

	"tastybites-dashboard/internal/models"
)

func writeFixture(t *testing.T, rows []rawRow) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trucks.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[rawRow](f)
	if _, err := w.Write(rows); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func fixtureRows() []rawRow {
	return []rawRow{
		{
			Brand:       "Guac n' Roll",
			MenuType:    "Tacos",
			Price:       12.5,
			City:        "Warsaw",
			Category:    "Food",
			Subcategory: "Tacos",
			OrderTotal:  25.0,
			OrderTS:     time.Date(2022, time.June, 8, 14, 35, 12, 0, time.UTC),
		},
		{
			Brand:       "Freezing Point",
			MenuType:    "Ice Cream",
			Price:       6.0,
			City:        "Krakow",
			Category:    "Dessert",
			Subcategory: "Ice Cream",
			OrderTotal:  6.0,
			OrderTS:     time.Date(2023, time.January, 2, 9, 5, 0, 0, time.UTC),
		},
	}
}

func TestLoader_Verify(t *testing.T) {
	path := writeFixture(t, fixtureRows())
	l := NewLoader(path, nil)

	if err := l.Verify(); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	stats := l.Stats()
	if stats["rows"] != int64(2) {
		t.Errorf("rows = %v, want 2", stats["rows"])
	}
}

func TestLoader_VerifyMissingFile(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "absent.parquet"), nil)
	if err := l.Verify(); err == nil {
		t.Error("Verify() should fail for a missing dataset")
	}
}

func TestLoader_VerifyNotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.parquet")
	if err := os.WriteFile(path, []byte("not a parquet file"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(path, nil)
	if err := l.Verify(); err == nil {
		t.Error("Verify() should fail for a non-parquet file")
	}
}

func TestLoader_ScanDerivesDateAndHour(t *testing.T) {
	path := writeFixture(t, fixtureRows())
	l := NewLoader(path, nil)

	var records []models.TransactionRecord
	err := l.Scan(context.Background(), func(batch []models.TransactionRecord) error {
		records = append(records, batch...)
		return nil
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if !first.Date.Equal(time.Date(2022, time.June, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v, want midnight of the order day", first.Date)
	}
	if first.Hour != 14 {
		t.Errorf("Hour = %d, want 14", first.Hour)
	}
	if first.Brand != "Guac n' Roll" || first.Price != 12.5 {
		t.Errorf("unexpected record content: %+v", first)
	}

	second := records[1]
	if second.Hour != 9 {
		t.Errorf("Hour = %d, want 9", second.Hour)
	}
}

func TestLoader_ScanCancellation(t *testing.T) {
	path := writeFixture(t, fixtureRows())
	l := NewLoader(path, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Scan(ctx, func(batch []models.TransactionRecord) error {
		t.Error("visit should not run after cancellation")
		return nil
	})
	if err == nil {
		t.Error("Scan() should return the context error")
	}
}

func TestLoader_ScanCountsRows(t *testing.T) {
	path := writeFixture(t, fixtureRows())
	l := NewLoader(path, nil)

	for i := 0; i < 2; i++ {
		err := l.Scan(context.Background(), func(batch []models.TransactionRecord) error {
			return nil
		})
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
	}

	stats := l.Stats()
	if stats["scans"] != int64(2) {
		t.Errorf("scans = %v, want 2", stats["scans"])
	}
	if stats["rows_scanned"] != int64(4) {
		t.Errorf("rows_scanned = %v, want 4", stats["rows_scanned"])
	}
}
