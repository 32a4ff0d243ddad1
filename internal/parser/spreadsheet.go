package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/conorfennell/flipdeck/internal/domain"
)

// SheetOptions selects where cards live in a spreadsheet.
type SheetOptions struct {
	Sheet       string // xlsx only; empty means the first sheet
	FrontColumn string // column letter, e.g. "A"
	BackColumn  string
	SkipHeader  bool
}

// DefaultSheetOptions reads fronts from column A and backs from column B,
// skipping a header row.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{FrontColumn: "A", BackColumn: "B", SkipHeader: true}
}

// IsSpreadsheet reports whether path has an extension ParseSpreadsheet handles.
func IsSpreadsheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// ParseSpreadsheet reads one card per row from an .xlsx or .csv file.
// Rows with an empty front cell are skipped.
func ParseSpreadsheet(path string, opts SheetOptions) ([]domain.Card, error) {
	frontIdx, err := columnIndex(opts.FrontColumn)
	if err != nil {
		return nil, err
	}
	backIdx, err := columnIndex(opts.BackColumn)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path, opts.Sheet)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet %s", path)
	}
	if err != nil {
		return nil, err
	}

	if opts.SkipHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	var cards []domain.Card
	for _, row := range rows {
		f := strings.TrimSpace(cell(row, frontIdx))
		if f == "" {
			continue
		}
		cards = append(cards, domain.Card{Front: f, Back: strings.TrimSpace(cell(row, backIdx))})
	}
	return cards, nil
}

func columnIndex(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", name, err)
	}
	return n - 1, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
