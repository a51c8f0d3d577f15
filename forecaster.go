package forecaster

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ginilab/go-desforecaster/forecast"
	"github.com/ginilab/go-desforecaster/timedataset"
	"github.com/go-echarts/go-echarts/v2/components"
)

var (
	ErrEmptyTimeDataset = errors.New("no timedataset or uninitialized")
	ErrNoOptionsInModel = errors.New("no options set in model")
)

// Forecaster fits a double exponential smoothing model against a yearly series and can be used
// to project the series past the last observed year
type Forecaster struct {
	opt *Options

	seriesForecast *forecast.Forecast

	fitTrainingData *timedataset.TimeDataset
	fitResults      *Results
	residual        []float64
}

// New creates a new instance of a Forecaster using the provided options. If no options are provided
// a default is used.
func New(opt *Options) (*Forecaster, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}

	// work on a copy so the caller's options are never filled in or shared
	local := *opt
	if local.SeriesOptions == nil {
		local.SeriesOptions = forecast.NewDefaultOptions()
	} else {
		seriesOpt := *local.SeriesOptions
		local.SeriesOptions = &seriesOpt
	}
	if err := local.Validate(); err != nil {
		return nil, err
	}

	seriesForecast, err := forecast.New(local.SeriesOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecast series, %w", err)
	}
	return &Forecaster{
		opt:            &local,
		seriesForecast: seriesForecast,
	}, nil
}

// Fit takes the yearly series and fits the smoothing model. Years with a missing value are
// dropped before fitting, the remaining years must be in ascending order.
func (f *Forecaster) Fit(years []int, y []float64) error {
	fitYears, fitY, err := timedataset.DropMissing(years, y)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}
	td, err := timedataset.NewUnivariateDataset(fitYears, fitY)
	if err != nil {
		return fmt.Errorf("unable to create training dataset, %w", err)
	}

	if err := f.seriesForecast.Fit(td.Y); err != nil {
		return fmt.Errorf("unable to forecast series, %w", err)
	}
	f.fitTrainingData = td

	// residuals are aligned with the input years, missing years have no residual
	residual := f.seriesForecast.Residuals()
	f.residual = make([]float64, len(years))
	var j int
	for i := 0; i < len(years); i++ {
		if j < len(td.Years) && !math.IsNaN(y[i]) && years[i] == td.Years[j] {
			f.residual[i] = residual[j]
			j++
			continue
		}
		f.residual[i] = math.NaN()
	}

	future, err := f.Predict(f.opt.Horizon)
	if err != nil {
		return fmt.Errorf("unable to get future values from training set, %w", err)
	}

	scores := f.seriesForecast.Scores()
	f.fitResults = &Results{
		Alpha:        f.seriesForecast.Alpha(),
		Horizon:      f.opt.Horizon,
		Observations: td.Len(),
		Calculation: newCalculationRows(
			td.Years,
			td.Y,
			f.seriesForecast.Components(),
			f.seriesForecast.Fitted(),
			residual,
		),
		Future: future,
		Scores: scores,
		Band:   forecast.MAPEBand(scores.MAPE),
	}
	return nil
}

// Predict projects the fit horizon years past the last training year
func (f *Forecaster) Predict(horizon int) ([]FuturePoint, error) {
	if f.fitTrainingData == nil {
		return nil, ErrEmptyTimeDataset
	}
	values, err := f.seriesForecast.Predict(horizon)
	if err != nil {
		return nil, fmt.Errorf("unable to predict series forecasts, %w", err)
	}
	years, err := timedataset.YearSlice(f.fitTrainingData.Years).Future(horizon)
	if err != nil {
		return nil, err
	}

	res := make([]FuturePoint, horizon)
	for i := range values {
		res[i] = FuturePoint{
			Step:  i + 1,
			Year:  years[i],
			Value: values[i],
		}
	}
	return res, nil
}

// Residuals returns the difference between the in-sample forecasts and the input series. Years
// dropped for a missing value and the first fitted year are NaN.
func (f *Forecaster) Residuals() []float64 {
	return f.residual
}

// Level returns the level at the last training year
func (f *Forecaster) Level() float64 {
	return f.seriesForecast.Level()
}

// Slope returns the per year slope at the last training year
func (f *Forecaster) Slope() float64 {
	return f.seriesForecast.Slope()
}

// Scores returns the in-sample fit scores
func (f *Forecaster) Scores() forecast.Scores {
	return f.seriesForecast.Scores()
}

// Model generates a serializeable representation of the fit options and series model
func (f *Forecaster) Model() (Model, error) {
	seriesModel, err := f.seriesForecast.Model()
	if err != nil {
		return Model{}, fmt.Errorf("unable to fetch series model, %w", err)
	}
	m := Model{
		Options: f.opt,
		Series:  seriesModel,
	}
	if f.fitTrainingData != nil {
		years := timedataset.YearSlice(f.fitTrainingData.Years)
		m.StartYear = years.StartYear()
		m.EndYear = years.EndYear()
	}
	return m, nil
}

// TrainingData returns the training data used to fit the current forecaster model
func (f *Forecaster) TrainingData() *timedataset.TimeDataset {
	return f.fitTrainingData
}

// FitResults returns the calculation table, future values and scores of the fit
func (f *Forecaster) FitResults() *Results {
	return f.fitResults
}

// PlotFit uses the Apache Echarts library to generate an html page showing the actual series
// against the in-sample and future forecasts along with the fit residual
func (f *Forecaster) PlotFit(w io.Writer) error {
	if f.fitResults == nil {
		return ErrEmptyTimeDataset
	}
	return RenderFit(w, f.fitResults)
}

// RenderFit renders the fit chart page of previously computed results
func RenderFit(w io.Writer, res *Results) error {
	if res == nil {
		return ErrEmptyTimeDataset
	}
	residuals := padNaN(res.Residuals(), len(res.Future))

	page := components.NewPage()
	page.PageTitle = "Gini Forecast"
	page.AddCharts(
		LineForecaster(res),
		LineTSeries(
			"Forecast Residual",
			[]string{"Residual"},
			res.Years(),
			[][]float64{residuals},
		),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("unable to render forecast page, %w", err)
	}
	return nil
}

// PlotInterpolation renders a page comparing a column before and after interpolation
func PlotInterpolation(w io.Writer, column string, years []int, before, after []float64) error {
	page := components.NewPage()
	page.PageTitle = "Interpolation"
	page.AddCharts(LineInterpolation(column, years, before, after))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("unable to render interpolation page, %w", err)
	}
	return nil
}

// Run fits a forecaster with the given options against the yearly series and returns the fit
// results including the horizon of future values
func Run(years []int, y []float64, opt *Options) (*Results, error) {
	f, err := New(opt)
	if err != nil {
		return nil, err
	}
	if err := f.Fit(years, y); err != nil {
		return nil, err
	}
	return f.FitResults(), nil
}
