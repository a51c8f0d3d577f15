package forecast

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidAlpha = errors.New("alpha must be in the range (0, 1]")

// DefaultAlpha is the smoothing factor used when no options are provided
const DefaultAlpha = 0.6

// Options configures the smoothing of a Forecast. Alpha weighs the most recent
// observation against the running smoothed value. Values closer to 1 react faster
// to new data, values closer to 0 produce a steadier series.
type Options struct {
	Alpha float64 `json:"alpha"`
}

// NewDefaultOptions returns options using the DefaultAlpha
func NewDefaultOptions() *Options {
	return &Options{
		Alpha: DefaultAlpha,
	}
}

// Validate checks that alpha is usable by the smoothing recurrence. An alpha of exactly 1
// is accepted and produces a zero slope.
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}
	if math.IsNaN(o.Alpha) || o.Alpha <= 0 || o.Alpha > 1 {
		return fmt.Errorf("got %v, %w", o.Alpha, ErrInvalidAlpha)
	}
	return nil
}
