package dataset

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertFloatSliceEqualWithNaN(t *testing.T, expected, actual []float64) {
	t.Helper()
	if len(expected) != len(actual) {
		assert.Failf(t, "length mismatch", "expected len=%d, got len=%d", len(expected), len(actual))
		return
	}
	for i := range expected {
		e, a := expected[i], actual[i]
		if math.IsNaN(e) && math.IsNaN(a) {
			continue
		}
		assert.InDeltaf(t, e, a, 1e-12, "index %d mismatch", i)
	}
}

func TestInterpolateLinear(t *testing.T) {
	nan := math.NaN()

	testData := map[string]struct {
		y        []float64
		expected []float64
	}{
		"empty": {
			y:        []float64{},
			expected: []float64{},
		},
		"nothing missing": {
			y:        []float64{1, 2, 3},
			expected: []float64{1, 2, 3},
		},
		"single interior gap": {
			y:        []float64{1, nan, 3},
			expected: []float64{1, 2, 3},
		},
		"long interior gap": {
			y:        []float64{0.60, nan, nan, nan, 0.68},
			expected: []float64{0.60, 0.62, 0.64, 0.66, 0.68},
		},
		"multiple gaps": {
			y:        []float64{1, nan, 3, nan, nan, 6},
			expected: []float64{1, 2, 3, 4, 5, 6},
		},
		"leading gap left unfilled": {
			y:        []float64{nan, nan, 3, 4},
			expected: []float64{nan, nan, 3, 4},
		},
		"trailing gap left unfilled": {
			y:        []float64{1, 2, nan, nan},
			expected: []float64{1, 2, nan, nan},
		},
		"single known value": {
			y:        []float64{nan, 5, nan},
			expected: []float64{nan, 5, nan},
		},
		"all missing": {
			y:        []float64{nan, nan},
			expected: []float64{nan, nan},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			in := make([]float64, len(td.y))
			copy(in, td.y)

			res := InterpolateLinear(td.y)
			assertFloatSliceEqualWithNaN(t, td.expected, res)
			// input must be left untouched
			assertFloatSliceEqualWithNaN(t, in, td.y)
		})
	}
}

func newTestTable() *Table {
	nan := math.NaN()
	return &Table{
		YearColumn: "Year",
		Columns:    []string{"gini_disp", "GDP"},
		Rows: []Row{
			{Year: 1996, Values: []float64{0.66, nan}},
			{Year: 1993, Values: []float64{0.60, 100}},
			{Year: 1995, Values: []float64{nan, 120}},
			{Year: 1994, Values: []float64{nan, nan}},
			{Year: 1992, Values: []float64{nan, 90}},
		},
		Skipped: []string{"Country"},
	}
}

func TestClean(t *testing.T) {
	nan := math.NaN()
	raw := newTestTable()

	clean := Clean(raw)
	assert.Equal(t, []int{1992, 1993, 1994, 1995, 1996}, clean.Years())

	gini, err := clean.Column("gini_disp")
	require.Nil(t, err)
	assertFloatSliceEqualWithNaN(t, []float64{nan, 0.60, 0.62, 0.64, 0.66}, gini)

	gdp, err := clean.Column("GDP")
	require.Nil(t, err)
	assertFloatSliceEqualWithNaN(t, []float64{90, 100, 110, 120, nan}, gdp)

	// raw table is not modified
	assert.Equal(t, 1996, raw.Rows[0].Year)
	assert.True(t, math.IsNaN(raw.Rows[2].Values[0]))
}

func TestSortByYearStable(t *testing.T) {
	table := &Table{
		Columns: []string{"v"},
		Rows: []Row{
			{Year: 2001, Values: []float64{1}},
			{Year: 2000, Values: []float64{2}},
			{Year: 2001, Values: []float64{3}},
		},
	}
	table.SortByYear()
	v, err := table.Column("v")
	require.Nil(t, err)
	assert.Equal(t, []float64{2, 1, 3}, v)
}

func TestSelect(t *testing.T) {
	table := newTestTable()

	sel, err := table.Select("GDP")
	require.Nil(t, err)
	assert.Equal(t, []string{"GDP"}, sel.Columns)
	assert.Equal(t, table.Len(), sel.Len())
	assert.Equal(t, 2, sel.Width())
	assert.Equal(t, 100.0, sel.Rows[1].Values[0])

	_, err = table.Select("gini_disp", "FLABOUR")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = table.Column("FLABOUR")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestGini(t *testing.T) {
	years, gini, err := newTestTable().Gini()
	require.Nil(t, err)
	assert.Equal(t, []int{1996, 1993, 1995, 1994, 1992}, years)
	assert.Len(t, gini, 5)
}

func TestTableJSON(t *testing.T) {
	table := &Table{
		YearColumn: "Year",
		Columns:    []string{"gini_disp"},
		Rows: []Row{
			{Year: 1993, Values: []float64{0.6}},
			{Year: 1994, Values: []float64{math.NaN()}},
		},
	}
	out, err := json.Marshal(table)
	require.Nil(t, err)
	assert.JSONEq(t, `{
		"year_column": "Year",
		"columns": ["gini_disp"],
		"rows": [
			{"year": 1993, "values": [0.6]},
			{"year": 1994, "values": [null]}
		]
	}`, string(out))
}
