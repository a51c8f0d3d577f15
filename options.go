package forecaster

import (
	"fmt"

	"github.com/ginilab/go-desforecaster/forecast"
)

// DefaultHorizon is the number of years forecast past the training data by default
const DefaultHorizon = 5

// Options configures a Forecaster. SeriesOptions are handed to the underlying smoothing
// model and Horizon sets how many years are projected past the last observation.
type Options struct {
	SeriesOptions *forecast.Options `json:"series_options"`
	Horizon       int               `json:"horizon"`
}

// NewDefaultOptions returns an alpha of 0.6 with a 5 year horizon
func NewDefaultOptions() *Options {
	return &Options{
		SeriesOptions: forecast.NewDefaultOptions(),
		Horizon:       DefaultHorizon,
	}
}

// NewOptions is a shorthand for options with the given alpha and horizon
func NewOptions(alpha float64, horizon int) *Options {
	return &Options{
		SeriesOptions: &forecast.Options{Alpha: alpha},
		Horizon:       horizon,
	}
}

// Alpha returns the smoothing factor of the series options
func (o *Options) Alpha() float64 {
	if o == nil || o.SeriesOptions == nil {
		return forecast.DefaultAlpha
	}
	return o.SeriesOptions.Alpha
}

// Validate checks the series options and the horizon
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if err := o.SeriesOptions.Validate(); err != nil {
		return err
	}
	if o.Horizon < 1 {
		return fmt.Errorf("got %d, %w", o.Horizon, forecast.ErrInvalidHorizon)
	}
	return nil
}
