package forecaster

import (
	"bytes"
	"math"
	"testing"

	"github.com/ginilab/go-desforecaster/forecast"
	"github.com/ginilab/go-desforecaster/timedataset"
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
		assert.InDeltaf(t, e, a, 1e-9, "index %d mismatch", i)
	}
}

func workedExample() ([]int, []float64) {
	return []int{2000, 2001, 2002, 2003}, []float64{0.60, 0.62, 0.65, 0.63}
}

func TestRun(t *testing.T) {
	years, y := workedExample()

	res, err := Run(years, y, NewOptions(0.5, 3))
	require.Nil(t, err)

	assert.Equal(t, 0.5, res.Alpha)
	assert.Equal(t, 3, res.Horizon)
	assert.Equal(t, 4, res.Observations)
	require.Len(t, res.Calculation, 4)

	first := res.Calculation[0]
	assert.Equal(t, 2000, first.Year)
	assert.InDelta(t, 0.60, first.S1, 1e-9)
	assert.InDelta(t, 0.60, first.S2, 1e-9)
	assert.Nil(t, first.Forecast)
	assert.Nil(t, first.Error)
	assert.Nil(t, first.AbsError)
	assert.Nil(t, first.SquaredError)

	expectedForecast := []float64{0.60, 0.62, 0.655}
	expectedError := []float64{0.02, 0.03, -0.025}
	for i, row := range res.Calculation[1:] {
		require.NotNil(t, row.Forecast)
		assert.InDelta(t, expectedForecast[i], *row.Forecast, 1e-9)
		assert.InDelta(t, expectedError[i], *row.Error, 1e-9)
		assert.InDelta(t, math.Abs(expectedError[i]), *row.AbsError, 1e-9)
		assert.InDelta(t, expectedError[i]*expectedError[i], *row.SquaredError, 1e-9)
	}

	last := res.Calculation[3]
	assert.InDelta(t, 0.63625, last.A, 1e-9)
	assert.InDelta(t, 0.00625, last.B, 1e-9)

	require.Len(t, res.Future, 3)
	expectedFuture := []FuturePoint{
		{Step: 1, Year: 2004, Value: 0.6425},
		{Step: 2, Year: 2005, Value: 0.64875},
		{Step: 3, Year: 2006, Value: 0.655},
	}
	for i, p := range res.Future {
		assert.Equal(t, expectedFuture[i].Step, p.Step)
		assert.Equal(t, expectedFuture[i].Year, p.Year)
		assert.InDelta(t, expectedFuture[i].Value, p.Value, 1e-9)
	}

	assert.InDelta(t, 0.025, res.Scores.MAE, 1e-9)
	assert.InDelta(t, (0.0004+0.0009+0.000625)/3, res.Scores.MSE, 1e-9)
	assert.InDelta(t, math.Sqrt((0.0004+0.0009+0.000625)/3), res.Scores.RMSE, 1e-9)
	assert.InDelta(t, (0.02/0.62+0.03/0.65+0.025/0.63)/3*100, res.Scores.MAPE, 1e-9)
	assert.Equal(t, forecast.BandExcellent, res.Band)

	assert.Equal(t, []int{2000, 2001, 2002, 2003, 2004, 2005, 2006}, res.Years())
	assertFloatSliceEqualWithNaN(t, []float64{math.NaN(), 0.60, 0.62, 0.655}, res.Fitted())
	assertFloatSliceEqualWithNaN(t, []float64{math.NaN(), 0.02, 0.03, -0.025}, res.Residuals())
}

func TestRunDefaultOptions(t *testing.T) {
	years := timedataset.GenerateYears(1990, 10)
	y := timedataset.GenerateTrendY(10, 0.5, 0.01)

	res, err := Run(years, y, nil)
	require.Nil(t, err)
	assert.Equal(t, forecast.DefaultAlpha, res.Alpha)
	assert.Equal(t, DefaultHorizon, res.Horizon)
	require.Len(t, res.Future, DefaultHorizon)
	assert.Equal(t, 2000, res.Future[0].Year)
	assert.Equal(t, 2004, res.Future[DefaultHorizon-1].Year)

	// a perfect trend is tracked after the smoothing catches up
	assert.Less(t, res.Scores.MAE, 0.01)
	for i, p := range res.Future {
		assert.InDelta(t, 0.5+0.01*float64(10+i), p.Value, 0.01)
	}
}

func TestFitDropsMissing(t *testing.T) {
	years := []int{1990, 1991, 1992, 1993, 1994, 1995}
	y := []float64{math.NaN(), 0.60, 0.62, 0.65, 0.63, math.NaN()}

	f, err := New(NewOptions(0.5, 2))
	require.Nil(t, err)
	require.Nil(t, f.Fit(years, y))

	td := f.TrainingData()
	assert.Equal(t, []int{1991, 1992, 1993, 1994}, td.Years)
	assertFloatSliceEqualWithNaN(t,
		[]float64{math.NaN(), math.NaN(), 0.02, 0.03, -0.025, math.NaN()},
		f.Residuals(),
	)

	res := f.FitResults()
	require.Len(t, res.Future, 2)
	assert.Equal(t, 1995, res.Future[0].Year)
	assert.Equal(t, 1996, res.Future[1].Year)
	assert.InDelta(t, 0.63625, f.Level(), 1e-9)
	assert.InDelta(t, 0.00625, f.Slope(), 1e-9)
	assert.InDelta(t, 0.025, f.Scores().MAE, 1e-9)
}

func TestNewErrors(t *testing.T) {
	testData := map[string]struct {
		opt *Options
		err error
	}{
		"zero alpha":      {opt: NewOptions(0.0, 5), err: forecast.ErrInvalidAlpha},
		"alpha over one":  {opt: NewOptions(1.5, 5), err: forecast.ErrInvalidAlpha},
		"zero horizon":    {opt: NewOptions(0.5, 0), err: forecast.ErrInvalidHorizon},
		"default options": {opt: nil, err: nil},
		"alpha of one":    {opt: NewOptions(1.0, 1), err: nil},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := New(td.opt)
			if td.err == nil {
				assert.Nil(t, err)
				return
			}
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestNewLeavesOptionsUntouched(t *testing.T) {
	opt := &Options{Horizon: 3}
	f, err := New(opt)
	require.Nil(t, err)
	assert.Nil(t, opt.SeriesOptions)
	assert.Equal(t, forecast.DefaultAlpha, f.opt.Alpha())

	seriesOpt := &forecast.Options{Alpha: 0.4}
	opt = &Options{SeriesOptions: seriesOpt, Horizon: 3}
	f, err = New(opt)
	require.Nil(t, err)
	f.opt.SeriesOptions.Alpha = 0.9
	assert.Equal(t, 0.4, seriesOpt.Alpha)
	assert.Equal(t, 3, f.opt.Horizon)
}

func TestFitErrors(t *testing.T) {
	testData := map[string]struct {
		years []int
		y     []float64
		err   error
	}{
		"too few observations": {
			years: []int{2000, 2001, 2002},
			y:     []float64{1, 2, 3},
			err:   forecast.ErrInsufficientData,
		},
		"too few after dropping missing": {
			years: []int{2000, 2001, 2002, 2003},
			y:     []float64{1, 2, math.NaN(), 3},
			err:   forecast.ErrInsufficientData,
		},
		"all missing": {
			years: []int{2000, 2001},
			y:     []float64{math.NaN(), math.NaN()},
			err:   timedataset.ErrNoTrainingData,
		},
		"decreasing years": {
			years: []int{2000, 2002, 2001, 2003},
			y:     []float64{1, 2, 3, 4},
			err:   timedataset.ErrNonMonotonic,
		},
		"length mismatch": {
			years: []int{2000, 2001, 2002},
			y:     []float64{1, 2, 3, 4},
			err:   timedataset.ErrDatasetLenMismatch,
		},
		"infinite value": {
			years: []int{2000, 2001, 2002, 2003},
			y:     []float64{1, 2, math.Inf(1), 4},
			err:   forecast.ErrNonFiniteValue,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			f, err := New(nil)
			require.Nil(t, err)
			assert.ErrorIs(t, f.Fit(td.years, td.y), td.err)
			assert.Nil(t, f.FitResults())
		})
	}
}

func TestUnfitForecaster(t *testing.T) {
	f, err := New(nil)
	require.Nil(t, err)

	_, err = f.Predict(3)
	assert.ErrorIs(t, err, ErrEmptyTimeDataset)

	_, err = f.Model()
	assert.ErrorIs(t, err, forecast.ErrUntrainedForecast)

	var buf bytes.Buffer
	assert.ErrorIs(t, f.PlotFit(&buf), ErrEmptyTimeDataset)
}

func TestPredict(t *testing.T) {
	years, y := workedExample()
	f, err := New(NewOptions(0.5, 3))
	require.Nil(t, err)
	require.Nil(t, f.Fit(years, y))

	res, err := f.Predict(1)
	require.Nil(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 2004, res[0].Year)
	assert.InDelta(t, 0.6425, res[0].Value, 1e-9)

	_, err = f.Predict(0)
	assert.ErrorIs(t, err, forecast.ErrInvalidHorizon)
}

func TestPlotFit(t *testing.T) {
	years, y := workedExample()
	f, err := New(NewOptions(0.5, 3))
	require.Nil(t, err)
	require.Nil(t, f.Fit(years, y))

	var buf bytes.Buffer
	require.Nil(t, f.PlotFit(&buf))

	out := buf.String()
	assert.Contains(t, out, "Forecast Fit")
	assert.Contains(t, out, "Forecast Residual")
	assert.Contains(t, out, "echarts")
}

func TestRenderFitNoResults(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderFit(&buf, nil), ErrEmptyTimeDataset)
}

func TestPlotInterpolation(t *testing.T) {
	var buf bytes.Buffer
	err := PlotInterpolation(&buf, "gini_disp",
		[]int{2000, 2001, 2002},
		[]float64{0.6, math.NaN(), 0.62},
		[]float64{0.6, 0.61, 0.62},
	)
	require.Nil(t, err)
	assert.Contains(t, buf.String(), "Interpolation: gini_disp")
}
