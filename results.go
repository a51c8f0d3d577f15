package forecaster

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/ginilab/go-desforecaster/forecast"
	"github.com/ginilab/go-desforecaster/forecast/util"
)

// CalculationRow is one year of the in-sample fit. Forecast and the error fields are nil for
// the first year since there is no prior state to forecast from.
type CalculationRow struct {
	Year         int      `json:"year"`
	Actual       float64  `json:"actual"`
	S1           float64  `json:"s1"`
	S2           float64  `json:"s2"`
	A            float64  `json:"a"`
	B            float64  `json:"b"`
	Forecast     *float64 `json:"forecast"`
	Error        *float64 `json:"error"`
	AbsError     *float64 `json:"abs_error"`
	SquaredError *float64 `json:"squared_error"`
}

// FuturePoint is a projection Step years past the last observation
type FuturePoint struct {
	Step  int     `json:"step"`
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Results holds everything computed for one alpha and horizon: the per year calculation
// table, the future projections and the fit scores
type Results struct {
	Alpha        float64          `json:"alpha"`
	Horizon      int              `json:"horizon"`
	Observations int              `json:"observations"`
	Calculation  []CalculationRow `json:"calculation"`
	Future       []FuturePoint    `json:"future"`
	Scores       forecast.Scores  `json:"scores"`
	Band         forecast.Band    `json:"mape_band"`
}

func newCalculationRows(years []int, y []float64, comp forecast.Components, fitted, residual []float64) []CalculationRow {
	rows := make([]CalculationRow, len(y))
	for i := range y {
		rows[i] = CalculationRow{
			Year:   years[i],
			Actual: y[i],
			S1:     comp.S1[i],
			S2:     comp.S2[i],
			A:      comp.A[i],
			B:      comp.B[i],
		}
		if math.IsNaN(fitted[i]) {
			continue
		}
		e := residual[i]
		rows[i].Forecast = floatPtr(fitted[i])
		rows[i].Error = floatPtr(e)
		rows[i].AbsError = floatPtr(math.Abs(e))
		rows[i].SquaredError = floatPtr(e * e)
	}
	return rows
}

func floatPtr(v float64) *float64 {
	return &v
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// Years returns the observed years followed by the future years
func (r *Results) Years() []int {
	years := make([]int, 0, len(r.Calculation)+len(r.Future))
	for _, row := range r.Calculation {
		years = append(years, row.Year)
	}
	for _, p := range r.Future {
		years = append(years, p.Year)
	}
	return years
}

// Actual returns the observed values
func (r *Results) Actual() []float64 {
	y := make([]float64, len(r.Calculation))
	for i, row := range r.Calculation {
		y[i] = row.Actual
	}
	return y
}

// Fitted returns the in-sample forecasts, NaN where undefined
func (r *Results) Fitted() []float64 {
	y := make([]float64, len(r.Calculation))
	for i, row := range r.Calculation {
		y[i] = valueOrNaN(row.Forecast)
	}
	return y
}

// Residuals returns the in-sample errors, NaN where undefined
func (r *Results) Residuals() []float64 {
	y := make([]float64, len(r.Calculation))
	for i, row := range r.Calculation {
		y[i] = valueOrNaN(row.Error)
	}
	return y
}

// FutureValues returns the projected values
func (r *Results) FutureValues() []float64 {
	y := make([]float64, len(r.Future))
	for i, p := range r.Future {
		y[i] = p.Value
	}
	return y
}

// TablePrint writes the calculation table followed by the future table
func (r *Results) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sCalculation:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sNo\tYear\tActual\tS1\tS2\ta\tb\tForecast\tError\t|Error|\tError^2\t\n",
		prefix, util.IndentExpand(indent, 1)); err != nil {
		return err
	}
	for i, row := range r.Calculation {
		if _, err := fmt.Fprintf(tbl, "%s%s%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			prefix, util.IndentExpand(indent, 1),
			i+1, row.Year,
			formatValue(row.Actual),
			formatValue(row.S1),
			formatValue(row.S2),
			formatValue(row.A),
			formatValue(row.B),
			formatValue(valueOrNaN(row.Forecast)),
			formatValue(valueOrNaN(row.Error)),
			formatValue(valueOrNaN(row.AbsError)),
			formatValue(valueOrNaN(row.SquaredError)),
		); err != nil {
			return err
		}
	}
	if err := tbl.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%s%sFuture:\n", prefix, util.IndentExpand(indent, 0)); err != nil {
		return err
	}
	tbl = tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sNo\tYear\tForecast\t\n", prefix, util.IndentExpand(indent, 1)); err != nil {
		return err
	}
	for _, p := range r.Future {
		if _, err := fmt.Fprintf(tbl, "%s%s%d\t%d\t%s\t\n",
			prefix, util.IndentExpand(indent, 1),
			p.Step, p.Year, formatValue(p.Value)); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

func formatValue(v float64) string {
	return util.FormatValue(v, 4, "-")
}
