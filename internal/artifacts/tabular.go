package artifacts

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"boe-rag/internal/models"
)

// CSVSink writes the day's records as a pipe-delimited file.
type CSVSink struct {
	store *Store
}

func (s *Store) CSV() *CSVSink { return &CSVSink{store: s} }

func (c *CSVSink) Name() string { return "csv" }

func (c *CSVSink) WriteRecords(_ context.Context, date time.Time, records []models.FlatRecord) (int, error) {
	p := c.store.path(dirCSV, DataFileName(date, ".csv"))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(p)
	if err != nil {
		return 0, fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return 0, fmt.Errorf("write %s: %w", p, err)
	}
	c.store.logger.Info().Str("path", p).Int("records", len(records)).Msg("csv written")
	return 0, f.Close()
}

// WriteCSV writes a header row and one row per record, delimited by "|".
func WriteCSV(w io.Writer, records []models.FlatRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = '|'
	if err := cw.Write(models.RecordColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSXSink writes the day's records as a spreadsheet.
type XLSXSink struct {
	store *Store
}

func (s *Store) XLSX() *XLSXSink { return &XLSXSink{store: s} }

func (x *XLSXSink) Name() string { return "xlsx" }

const sheetName = "boe"

func (x *XLSXSink) WriteRecords(_ context.Context, date time.Time, records []models.FlatRecord) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return 0, err
	}

	header := make([]any, len(models.RecordColumns))
	for i, c := range models.RecordColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return 0, err
	}

	for i, r := range records {
		row := make([]any, 0, len(models.RecordColumns))
		for _, v := range r.Row()[:len(models.RecordColumns)-1] {
			row = append(row, v)
		}
		row = append(row, r.SzKBytes)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	p := x.store.path(dirXLSX, DataFileName(date, ".xlsx"))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return 0, err
	}
	if err := f.SaveAs(p); err != nil {
		return 0, fmt.Errorf("save xlsx: %w", err)
	}
	x.store.logger.Info().Str("path", p).Int("records", len(records)).Msg("xlsx written")
	return 0, nil
}
