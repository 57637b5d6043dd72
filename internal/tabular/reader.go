package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrSheetNotFound is returned when none of the requested sheets exist.
var ErrSheetNotFound = errors.New("sheet not found")

// ReadOptions selects what to load from a workbook.
type ReadOptions struct {
	// Sheets lists candidate sheet names in order of preference. When empty
	// the first sheet of the workbook is used.
	Sheets []string
}

// csvDecoders is the fallback chain for CSV files that are not valid UTF-8:
// Thai (TIS-620 / Windows-874) exports first, then Western European.
var csvDecoders = []struct {
	name string
	enc  encoding.Encoding
}{
	{name: "windows-874", enc: charmap.Windows874},
	{name: "windows-1252", enc: charmap.Windows1252},
}

// Reader loads tables from .xlsx/.xlsm/.xls/.csv files.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader. A nil logger falls back to slog.Default().
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger.With(slog.String("component", "tabular"))}
}

// ReadFile loads path. Spreadsheets are opened with excelize; when that fails
// the file is retried as CSV, which is how mislabelled exports are handled.
func (r *Reader) ReadFile(ctx context.Context, path string, opts ReadOptions) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".csv" || ext == ".txt" {
		return r.readCSVFile(ctx, path)
	}

	table, err := r.readWorkbook(path, opts)
	if err == nil || errors.Is(err, ErrSheetNotFound) {
		return table, err
	}

	r.logger.WarnContext(ctx, "spreadsheet engine failed, retrying as CSV",
		slog.String("file", path),
		slog.String("error", err.Error()))
	table, csvErr := r.readCSVFile(ctx, path)
	if csvErr != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), errors.Join(err, csvErr))
	}
	return table, nil
}

// SheetNames lists the sheets of a workbook.
func (r *Reader) SheetNames(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func (r *Reader) readWorkbook(path string, opts ReadOptions) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := pickSheet(f.GetSheetList(), opts.Sheets)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return fromRecords(sheet, rows), nil
}

func pickSheet(available, wanted []string) (string, error) {
	if len(available) == 0 {
		return "", fmt.Errorf("%w: workbook has no sheets", ErrSheetNotFound)
	}
	if len(wanted) == 0 {
		return available[0], nil
	}
	for _, w := range wanted {
		for _, a := range available {
			if a == w {
				return a, nil
			}
		}
	}
	return "", fmt.Errorf("%w: none of %v", ErrSheetNotFound, wanted)
}

func (r *Reader) readCSVFile(ctx context.Context, path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	table, encName, err := DecodeCSV(name, data)
	if err != nil {
		return nil, err
	}
	if encName != "utf-8" {
		r.logger.InfoContext(ctx, "decoded CSV with fallback encoding",
			slog.String("file", path),
			slog.String("encoding", encName))
	}
	return table, nil
}

// DecodeCSV parses CSV bytes, trying UTF-8 (with or without BOM) and then the
// regional fallback encodings. It returns the encoding that succeeded.
func DecodeCSV(name string, data []byte) (*Table, string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		t, err := parseCSV(name, bytes.NewReader(data))
		return t, "utf-8", err
	}

	var lastErr error
	for _, d := range csvDecoders {
		decoded, err := d.enc.NewDecoder().Bytes(data)
		if err != nil {
			lastErr = err
			continue
		}
		if bytes.ContainsRune(decoded, utf8.RuneError) {
			lastErr = fmt.Errorf("%s: undefined characters", d.name)
			continue
		}
		t, err := parseCSV(name, bytes.NewReader(decoded))
		if err != nil {
			lastErr = err
			continue
		}
		return t, d.name, nil
	}
	return nil, "", fmt.Errorf("failed to decode CSV %s: %w", name, lastErr)
}

func parseCSV(name string, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return fromRecords(name, records), nil
}

// fromRecords uses the first record as the header. Rows wider than the
// header get generated column names so no data is lost.
func fromRecords(name string, records [][]string) *Table {
	if len(records) == 0 {
		return New(name)
	}
	header := records[0]
	width := len(header)
	for _, rec := range records[1:] {
		if len(rec) > width {
			width = len(rec)
		}
	}
	cols := make([]string, width)
	for i := range cols {
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			cols[i] = header[i]
		} else {
			cols[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}

	t := New(name, cols...)
	for _, rec := range records[1:] {
		row := make([]any, width)
		empty := true
		for i, cell := range rec {
			row[i] = InferCell(cell)
			if row[i] != nil {
				empty = false
			}
		}
		if empty {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
