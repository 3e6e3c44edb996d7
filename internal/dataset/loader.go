// Package dataset reads the columnar truck transaction file and hands the
// rest of the system ready-to-use records with the calendar date and hour of
// day already derived from the raw order timestamp.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/parquet-go/parquet-go"

	"tastybites-dashboard/internal/models"
)

const scanBatchSize = 4096

// rawRow mirrors the projected source columns. ORDER_TS never leaves this
// package; it is replaced by the derived Date and Hour fields.
type rawRow struct {
	Brand       string    `parquet:"TRUCK_BRAND_NAME"`
	MenuType    string    `parquet:"MENU_TYPE"`
	Price       float64   `parquet:"PRICE"`
	City        string    `parquet:"CITY"`
	Category    string    `parquet:"ITEM_CATEGORY"`
	Subcategory string    `parquet:"ITEM_SUBCATEGORY"`
	OrderTotal  float64   `parquet:"ORDER_TOTAL"`
	OrderTS     time.Time `parquet:"ORDER_TS"`
}

// Loader streams the parquet dataset in batches. Each Scan opens the file
// fresh, so the full dataset never has to fit in memory; callers keep only
// what they need from each batch. The file is read-only and safe to scan
// from concurrent queries.
type Loader struct {
	path        string
	logger      *slog.Logger
	rowCount    atomic.Int64
	rowsScanned atomic.Int64
	scans       atomic.Int64
}

func NewLoader(path string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{path: path, logger: logger}
}

// Verify checks that the dataset exists and carries a readable parquet
// footer. Called once at startup; a failure here is fatal for the process.
func (l *Loader) Verify() error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat dataset: %w", err)
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return fmt.Errorf("read parquet footer: %w", err)
	}

	l.rowCount.Store(pf.NumRows())
	l.logger.Info("dataset verified", "path", l.path, "rows", pf.NumRows(), "size_bytes", info.Size())
	return nil
}

// Scan streams every record to visit in batches, in file order. Timestamp
// derivation happens here so no caller ever sees the raw ORDER_TS column.
func (l *Loader) Scan(ctx context.Context, visit func(batch []models.TransactionRecord) error) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[rawRow](f)
	defer reader.Close()

	l.scans.Add(1)
	rows := make([]rawRow, scanBatchSize)
	batch := make([]models.TransactionRecord, 0, scanBatchSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := reader.Read(rows)
		if n > 0 {
			batch = batch[:0]
			for _, row := range rows[:n] {
				batch = append(batch, deriveRecord(row))
			}
			l.rowsScanned.Add(int64(n))
			if visitErr := visit(batch); visitErr != nil {
				return visitErr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read parquet rows: %w", err)
		}
	}
}

func deriveRecord(row rawRow) models.TransactionRecord {
	ts := row.OrderTS.UTC()
	return models.TransactionRecord{
		Brand:       row.Brand,
		MenuType:    row.MenuType,
		Price:       row.Price,
		City:        row.City,
		Category:    row.Category,
		Subcategory: row.Subcategory,
		OrderTotal:  row.OrderTotal,
		Date:        time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
		Hour:        ts.Hour(),
	}
}

// Stats reports loader counters for the admin surface.
func (l *Loader) Stats() map[string]any {
	return map[string]any{
		"path":         l.path,
		"rows":         l.rowCount.Load(),
		"rows_scanned": l.rowsScanned.Load(),
		"scans":        l.scans.Load(),
	}
}
