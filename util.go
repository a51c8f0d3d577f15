package forecaster

import (
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// gap is the echarts placeholder for a missing point on a line
const gap = "-"

func lineValues(y []float64) []opts.LineData {
	data := make([]opts.LineData, len(y))
	for i, v := range y {
		if math.IsNaN(v) {
			data[i] = opts.LineData{Value: gap}
			continue
		}
		data[i] = opts.LineData{Value: v}
	}
	return data
}

func padNaN(y []float64, n int) []float64 {
	out := make([]float64, 0, len(y)+n)
	out = append(out, y...)
	for i := 0; i < n; i++ {
		out = append(out, math.NaN())
	}
	return out
}

// LineTSeries generates an echart multi-line chart for some arbitrary year/value combination. The input
// y is a slice of series that must have the same length as the input year slice. Missing values
// are drawn as gaps.
func LineTSeries(title string, seriesName []string, years []int, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	line = line.SetXAxis(years)
	for i, series := range seriesName {
		if i >= len(y) {
			break
		}
		line = line.AddSeries(series, lineValues(y[i]))
	}
	return line
}

// LineForecaster generates an echart line chart for a fit result plotting the actual values
// along with the in-sample forecasts and the future values
func LineForecaster(res *Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    "Forecast Fit",
				Subtitle: "Brown's double exponential smoothing",
			},
		),
	)

	n := len(res.Future)
	actual := padNaN(res.Actual(), n)

	// the future line starts at the last fitted point so the two lines connect
	fitted := padNaN(res.Fitted(), n)
	future := make([]float64, len(res.Calculation), len(res.Calculation)+n)
	for i := range future {
		future[i] = math.NaN()
	}
	if len(future) > 0 {
		future[len(future)-1] = fitted[len(res.Calculation)-1]
	}
	future = append(future, res.FutureValues()...)

	line.SetXAxis(res.Years()).
		AddSeries("Actual", lineValues(actual)).
		AddSeries("Forecast", lineValues(fitted)).
		AddSeries("Future", lineValues(future))
	return line
}

// LineInterpolation generates an echart line chart comparing a column before and after its gaps
// were filled
func LineInterpolation(column string, years []int, before, after []float64) *charts.Line {
	return LineTSeries(
		"Interpolation: "+column,
		[]string{"Before", "After"},
		years,
		[][]float64{before, after},
	)
}
