package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptySheet  = errors.New("sheet has no header row")
	ErrInvalidYear = errors.New("year is not a whole number")
)

// DefaultMissingTokens are the cell contents read as a missing value, besides an empty cell
var DefaultMissingTokens = []string{
	"#N/A", "#N/A N/A", "#NA", "-NaN", "-nan", "N/A", "NA", "NULL", "NaN", "n/a", "nan", "null",
}

// LoadOptions holds options for spreadsheet loading
type LoadOptions struct {
	Sheet           string   // Sheet to read, defaults to the first sheet of the workbook
	YearColumn      string   // Header of the year column, matched case insensitively
	RequiredColumns []string // Numeric columns that must be present
	MissingTokens   []string // Cell contents treated as missing
}

// DefaultLoadOptions returns the options for the gini dataset
func DefaultLoadOptions() *LoadOptions {
	return &LoadOptions{
		YearColumn:      ColumnYear,
		RequiredColumns: []string{ColumnGiniDisp},
		MissingTokens:   DefaultMissingTokens,
	}
}

// Load reads the workbook at path into a Table. The rows are kept in sheet order and no
// missing values are filled, see Clean.
func Load(path string, opt *LoadOptions) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook %s, %w", path, err)
	}
	defer f.Close()

	return parseWorkbook(f, opt)
}

// LoadFromReader reads a workbook from an io.Reader into a Table
func LoadFromReader(r io.Reader, opt *LoadOptions) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook, %w", err)
	}
	defer f.Close()

	return parseWorkbook(f, opt)
}

func parseWorkbook(f *excelize.File, opt *LoadOptions) (*Table, error) {
	if opt == nil {
		opt = DefaultLoadOptions()
	}
	yearColumn := opt.YearColumn
	if yearColumn == "" {
		yearColumn = ColumnYear
	}

	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptySheet
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s, %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s, %w", sheet, ErrEmptySheet)
	}

	header := make([]string, len(rows[0]))
	yearIdx := -1
	for j, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", j)
		}
		header[j] = h
		if yearIdx < 0 && strings.EqualFold(h, yearColumn) {
			yearIdx = j
		}
	}
	if yearIdx < 0 {
		return nil, fmt.Errorf("%s, %w", yearColumn, ErrMissingColumn)
	}

	missing := make(map[string]struct{}, len(opt.MissingTokens))
	for _, tok := range opt.MissingTokens {
		missing[tok] = struct{}{}
	}
	parseCell := func(cell string) (float64, bool, error) {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			return math.NaN(), true, nil
		}
		if _, exists := missing[cell]; exists {
			return math.NaN(), true, nil
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return 0, false, err
		}
		return v, false, nil
	}
	cellAt := func(row []string, j int) string {
		if j < len(row) {
			return row[j]
		}
		return ""
	}

	// keep rows with a year, blank trailing rows are common in workbooks
	var data [][]string
	var years []int
	for i, row := range rows[1:] {
		v, isMissing, err := parseCell(cellAt(row, yearIdx))
		if isMissing {
			continue
		}
		if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return nil, fmt.Errorf("row %d value %q, %w", i+2, cellAt(row, yearIdx), ErrInvalidYear)
		}
		data = append(data, row)
		years = append(years, int(v))
	}

	t := &Table{
		YearColumn: header[yearIdx],
		Rows:       make([]Row, len(data)),
	}
	for i := range t.Rows {
		t.Rows[i].Year = years[i]
	}

	for j, name := range header {
		if j == yearIdx {
			continue
		}
		col := make([]float64, len(data))
		numeric := true
		for i, row := range data {
			v, _, err := parseCell(cellAt(row, j))
			if err != nil {
				numeric = false
				break
			}
			col[i] = v
		}
		if !numeric {
			t.Skipped = append(t.Skipped, name)
			continue
		}
		t.Columns = append(t.Columns, name)
		for i := range t.Rows {
			t.Rows[i].Values = append(t.Rows[i].Values, col[i])
		}
	}

	for _, req := range opt.RequiredColumns {
		if t.HasColumn(req) {
			continue
		}
		for _, skipped := range t.Skipped {
			if skipped == req {
				return nil, fmt.Errorf("%s, %w", req, ErrNonNumericColumn)
			}
		}
		return nil, fmt.Errorf("%s, %w", req, ErrMissingColumn)
	}
	return t, nil
}
