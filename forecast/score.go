package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks the fit scores. Only points where both the prediction and the actual value
// are defined contribute.
type Scores struct {
	MAE  float64 `json:"mean_absolute_error"`
	MSE  float64 `json:"mean_squared_error"`
	RMSE float64 `json:"root_mean_squared_error"`
	MAPE float64 `json:"mean_absolute_percent_error"`
	R2   float64 `json:"r_squared"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (*Scores, error) {
	mae, err := MAE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute error, %w", err)
	}
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute percent error, %w", err)
	}
	rs, err := RSquared(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}

	return &Scores{
		MAE:  mae,
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		MAPE: mape,
		R2:   rs,
	}, nil
}

// residualPairs returns actual-predicted for every point where both are defined along with the
// matching actual values
func residualPairs(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	res := make([]float64, 0, len(actual))
	act := make([]float64, 0, len(actual))
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		res = append(res, actual[i]-predicted[i])
		act = append(act, actual[i])
	}
	return res, act, nil
}

// MAE computes the mean absolute error, mean(abs(y-yhat)). A score of 0 means a perfect
// match with no errors.
func MAE(predicted, actual []float64) (float64, error) {
	res, _, err := residualPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	for i, e := range res {
		res[i] = math.Abs(e)
	}
	return stat.Mean(res, nil), nil
}

// MSE computes the mean squared error, mean((y-yhat)^2).
// A score of 0 means a perfect match with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	res, _, err := residualPairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return floats.Dot(res, res) / float64(len(res)), nil
}

// RMSE computes the root mean squared error
func RMSE(predicted, actual []float64) (float64, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAPE calculates the mean absolute percent error, mean(abs((y-yhat)/y))*100. Points where
// the actual value is 0 are excluded rather than substituted. If no points remain the
// score is 0.
func MAPE(predicted, actual []float64) (float64, error) {
	res, act, err := residualPairs(predicted, actual)
	if err != nil {
		return 0, err
	}

	ratios := make([]float64, 0, len(res))
	for i := 0; i < len(res); i++ {
		if act[i] == 0 {
			continue
		}
		ratios = append(ratios, math.Abs(res[i])/math.Abs(act[i]))
	}
	if len(ratios) == 0 {
		return 0, nil
	}
	return stat.Mean(ratios, nil) * 100.0, nil
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit and 0 represents no relationship
func RSquared(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	predictCopy := make([]float64, 0, len(predicted))
	actualCopy := make([]float64, 0, len(actual))
	for i := 0; i < len(predicted); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		predictCopy = append(predictCopy, predicted[i])
		actualCopy = append(actualCopy, actual[i])
	}
	if len(actualCopy) == 0 {
		return 1.0, nil
	}
	r2 := stat.RSquaredFrom(predictCopy, actualCopy, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	// constant actuals with an imperfect fit have no explained variance
	if math.IsInf(r2, 0) {
		return 0.0, nil
	}
	return r2, nil
}
