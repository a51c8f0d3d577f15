package forecast

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUninitializedForecast = errors.New("uninitialized forecast")
	ErrInsufficientData      = errors.New("insufficient observations for double exponential smoothing")
	ErrNonFiniteValue        = errors.New("observation is not a finite value")
	ErrInvalidHorizon        = errors.New("forecast horizon must be at least 1")
	ErrUntrainedForecast     = errors.New("forecast has not been trained yet")
)

// MinObservations is the smallest series the smoothing will be fit against
const MinObservations = 4

// Forecast represents a single Brown's double exponential smoothing model of a series. Two
// cascaded exponential averages are computed over the observations from which a level and
// slope are derived at every point. The one step ahead forecast at index i is the level plus
// slope at index i-1, and horizons past the training data extend the final level along the
// final slope.
type Forecast struct {
	opt    *Options
	scores *Scores // score calculations after training

	y        []float64
	comp     Components
	fitted   []float64
	residual []float64
	trained  bool
}

// New creates a new forecast instance with the given options. If none are provided, a default
// is used
func New(opt *Options) (*Forecast, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	return &Forecast{opt: opt}, nil
}

// Fit takes the ordered observations and computes the smoothing state, the in-sample one
// step forecasts, residuals and fit scores. Any previous fit is replaced.
func (f *Forecast) Fit(y []float64) error {
	if f == nil {
		return ErrUninitializedForecast
	}

	n := len(y)
	if n < MinObservations {
		return fmt.Errorf("got %d observations, need at least %d, %w", n, MinObservations, ErrInsufficientData)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("at index %d, %w", i, ErrNonFiniteValue)
		}
	}

	alpha := f.opt.Alpha
	comp := newComponents(n)

	// seed both orders with the first observation
	comp.S1[0] = y[0]
	comp.S2[0] = y[0]
	for t := 1; t < n; t++ {
		comp.S1[t] = alpha*y[t] + (1-alpha)*comp.S1[t-1]
		comp.S2[t] = alpha*comp.S1[t] + (1-alpha)*comp.S2[t-1]
	}

	factor := slopeFactor(alpha)
	for i := 0; i < n; i++ {
		comp.A[i] = 2*comp.S1[i] - comp.S2[i]
		comp.B[i] = factor * (comp.S1[i] - comp.S2[i])
	}

	// index 0 has no prior state to forecast from
	fitted := make([]float64, n)
	residual := make([]float64, n)
	fitted[0] = math.NaN()
	residual[0] = math.NaN()
	for i := 1; i < n; i++ {
		fitted[i] = comp.A[i-1] + comp.B[i-1]
		residual[i] = y[i] - fitted[i]
	}

	scores, err := NewScores(fitted, y)
	if err != nil {
		return fmt.Errorf("unable to score fit, %w", err)
	}

	f.y = copySlice(y)
	f.comp = comp
	f.fitted = fitted
	f.residual = residual
	f.scores = scores
	f.trained = true
	return nil
}

// slopeFactor is alpha/(1-alpha), defined as 0 when alpha is 1
func slopeFactor(alpha float64) float64 {
	if 1-alpha == 0 {
		return 0.0
	}
	return alpha / (1 - alpha)
}

// Predict projects the final level and slope of the fit horizon steps past the training data.
// The k-th value (1-indexed) is level + slope*k.
func (f *Forecast) Predict(horizon int) ([]float64, error) {
	if f == nil {
		return nil, ErrUninitializedForecast
	}
	if !f.trained {
		return nil, ErrUntrainedForecast
	}
	if horizon < 1 {
		return nil, fmt.Errorf("got %d, %w", horizon, ErrInvalidHorizon)
	}

	level := f.Level()
	slope := f.Slope()
	res := make([]float64, horizon)
	for k := 1; k <= horizon; k++ {
		res[k-1] = level + slope*float64(k)
	}
	return res, nil
}

// Alpha returns the smoothing factor of the forecast
func (f *Forecast) Alpha() float64 {
	if f == nil || f.opt == nil {
		return 0
	}
	return f.opt.Alpha
}

// Level returns the level component at the last training observation
func (f *Forecast) Level() float64 {
	if f == nil || !f.trained {
		return 0
	}
	return f.comp.A[len(f.comp.A)-1]
}

// Slope returns the slope component at the last training observation
func (f *Forecast) Slope() float64 {
	if f == nil || !f.trained {
		return 0
	}
	return f.comp.B[len(f.comp.B)-1]
}

// Components returns a copy of the smoothing state for every training observation
func (f *Forecast) Components() Components {
	if f == nil {
		return Components{}
	}
	return f.comp.Copy()
}

// Observations returns a copy of the training observations
func (f *Forecast) Observations() []float64 {
	if f == nil {
		return nil
	}
	return copySlice(f.y)
}

// Fitted returns the one step ahead in-sample forecasts. The first value is NaN since there
// is no prior state to forecast from.
func (f *Forecast) Fitted() []float64 {
	if f == nil {
		return nil
	}
	return copySlice(f.fitted)
}

// Residuals returns a slice of values representing the difference between the
// training data and the fit data. The first value is NaN.
func (f *Forecast) Residuals() []float64 {
	if f == nil {
		return nil
	}
	return copySlice(f.residual)
}

// Scores returns the fit scores for evaluating how well the resulting model
// fit the training data
func (f *Forecast) Scores() Scores {
	if f == nil {
		return Scores{}
	}
	if f.scores == nil {
		return Scores{}
	}
	return *f.scores
}
