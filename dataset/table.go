package dataset

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/goccy/go-json"
)

var (
	ErrUnknownColumn    = errors.New("unknown column")
	ErrMissingColumn    = errors.New("required column is missing")
	ErrNonNumericColumn = errors.New("required column is not numeric")
)

const (
	// ColumnYear is the default name of the year column. Matching is case insensitive.
	ColumnYear = "Year"
	// ColumnGiniDisp is the gini coefficient of disposable income, the forecast target
	ColumnGiniDisp = "gini_disp"
)

// DefaultSelectedColumns are the indicator columns kept for analysis after cleaning
var DefaultSelectedColumns = []string{
	"gini_disp",      // gini, disposable income
	"gini_mkt",       // gini, market income
	"Inflation rate", // percent
	"GDP",
	"GOVEDU",   // government education spending
	"GOVEXP",   // government expenditure
	"FINDEV 1", // financial development index
	"DEMOCRACY",
	"FLABOUR", // labour force participation
}

// Row is a single observation year with one value per numeric column of the owning Table.
// Missing values are NaN.
type Row struct {
	Year   int
	Values []float64
}

// Table is a typed view of a source spreadsheet: a year per row and the numeric columns
// other than the year. Columns that could not be parsed as numbers are only listed by name.
type Table struct {
	YearColumn string
	Columns    []string
	Rows       []Row
	Skipped    []string
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Width returns the number of source columns including the year and skipped columns
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return 1 + len(t.Columns) + len(t.Skipped)
}

// ColumnIndex returns the position of a numeric column within each row's values
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// HasColumn reports whether name is a numeric column of the table
func (t *Table) HasColumn(name string) bool {
	_, ok := t.ColumnIndex(name)
	return ok
}

// Years returns the year of every row in row order
func (t *Table) Years() []int {
	years := make([]int, len(t.Rows))
	for i, r := range t.Rows {
		years[i] = r.Year
	}
	return years
}

// Column returns a copy of the values of a numeric column in row order
func (t *Table) Column(name string) ([]float64, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("%s, %w", name, ErrUnknownColumn)
	}
	vals := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		vals[i] = r.Values[idx]
	}
	return vals, nil
}

// Series returns the years along with the values of a numeric column
func (t *Table) Series(name string) ([]int, []float64, error) {
	y, err := t.Column(name)
	if err != nil {
		return nil, nil, err
	}
	return t.Years(), y, nil
}

// Gini returns the years and the disposable income gini coefficient
func (t *Table) Gini() ([]int, []float64, error) {
	return t.Series(ColumnGiniDisp)
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		vals := make([]float64, len(r.Values))
		copy(vals, r.Values)
		rows[i] = Row{Year: r.Year, Values: vals}
	}
	return &Table{
		YearColumn: t.YearColumn,
		Columns:    append([]string(nil), t.Columns...),
		Rows:       rows,
		Skipped:    append([]string(nil), t.Skipped...),
	}
}

// SortByYear orders the rows ascending by year keeping the relative order of equal years
func (t *Table) SortByYear() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Year < t.Rows[j].Year
	})
}

// Interpolate linearly fills the interior gaps of every numeric column in the current row order
func (t *Table) Interpolate() {
	for c := range t.Columns {
		col := make([]float64, len(t.Rows))
		for i, r := range t.Rows {
			col[i] = r.Values[c]
		}
		col = InterpolateLinear(col)
		for i := range t.Rows {
			t.Rows[i].Values[c] = col[i]
		}
	}
}

// Select returns a new table holding only the requested numeric columns in the requested order
func (t *Table) Select(columns ...string) (*Table, error) {
	idxs := make([]int, 0, len(columns))
	for _, name := range columns {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			return nil, fmt.Errorf("%s, %w", name, ErrUnknownColumn)
		}
		idxs = append(idxs, idx)
	}

	rows := make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		vals := make([]float64, len(idxs))
		for j, idx := range idxs {
			vals[j] = r.Values[idx]
		}
		rows[i] = Row{Year: r.Year, Values: vals}
	}
	return &Table{
		YearColumn: t.YearColumn,
		Columns:    append([]string(nil), columns...),
		Rows:       rows,
	}, nil
}

// MissingCounts returns the number of missing values per numeric column
func (t *Table) MissingCounts() map[string]int {
	counts := make(map[string]int, len(t.Columns))
	for c, name := range t.Columns {
		counts[name] = 0
		for _, r := range t.Rows {
			if math.IsNaN(r.Values[c]) {
				counts[name]++
			}
		}
	}
	return counts
}

// MissingTotal returns the number of missing values across all numeric columns
func (t *Table) MissingTotal() int {
	var total int
	for _, cnt := range t.MissingCounts() {
		total += cnt
	}
	return total
}

type jsonRow struct {
	Year   int        `json:"year"`
	Values []*float64 `json:"values"`
}

type jsonTable struct {
	YearColumn string    `json:"year_column"`
	Columns    []string  `json:"columns"`
	Rows       []jsonRow `json:"rows"`
	Skipped    []string  `json:"skipped,omitempty"`
}

// MarshalJSON encodes missing values as null
func (t *Table) MarshalJSON() ([]byte, error) {
	out := jsonTable{
		YearColumn: t.YearColumn,
		Columns:    t.Columns,
		Rows:       make([]jsonRow, len(t.Rows)),
		Skipped:    t.Skipped,
	}
	for i, r := range t.Rows {
		vals := make([]*float64, len(r.Values))
		for j, v := range r.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			val := v
			vals[j] = &val
		}
		out.Rows[i] = jsonRow{Year: r.Year, Values: vals}
	}
	return json.Marshal(out)
}
