package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScores(t *testing.T) {
	nan := math.NaN()

	testData := map[string]struct {
		predicted []float64
		actual    []float64
		expected  Scores
		err       error
	}{
		"length mismatch": {
			predicted: []float64{1, 2},
			actual:    []float64{1},
			err:       ErrResLenMismatch,
		},
		"no valid points": {
			predicted: []float64{nan, nan},
			actual:    []float64{1, 2},
			expected:  Scores{R2: 1.0},
		},
		"perfect fit": {
			predicted: []float64{nan, 2, 3, 4},
			actual:    []float64{1, 2, 3, 4},
			expected:  Scores{R2: 1.0},
		},
		"constant offset": {
			predicted: []float64{nan, 1, 2, 3},
			actual:    []float64{1, 2, 4, 4},
			expected: Scores{
				MAE:  4.0 / 3.0,
				MSE:  6.0 / 3.0,
				RMSE: math.Sqrt(2.0),
				MAPE: (1.0/2.0 + 2.0/4.0 + 1.0/4.0) / 3.0 * 100.0,
				R2:   -1.25,
			},
		},
		"zero actual excluded from mape": {
			predicted: []float64{nan, 1, 1},
			actual:    []float64{5, 0, 2},
			expected: Scores{
				MAE:  1.0,
				MSE:  1.0,
				RMSE: 1.0,
				MAPE: 50.0,
				R2:   0.0,
			},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			scores, err := NewScores(td.predicted, td.actual)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDelta(t, td.expected.MAE, scores.MAE, 1e-9)
			assert.InDelta(t, td.expected.MSE, scores.MSE, 1e-9)
			assert.InDelta(t, td.expected.RMSE, scores.RMSE, 1e-9)
			assert.InDelta(t, td.expected.MAPE, scores.MAPE, 1e-9)
			assert.InDelta(t, td.expected.R2, scores.R2, 1e-9)
		})
	}
}

func TestMAPEAllZeroActual(t *testing.T) {
	mape, err := MAPE([]float64{1, 2, 3}, []float64{0, 0, 0})
	require.Nil(t, err)
	assert.Equal(t, 0.0, mape)
}

func TestMAPEBand(t *testing.T) {
	testData := map[string]struct {
		mape     float64
		expected Band
	}{
		"zero":       {0, BandExcellent},
		"under 5":    {4.99, BandExcellent},
		"exactly 5":  {5, BandGood},
		"under 10":   {9.5, BandGood},
		"exactly 10": {10, BandFair},
		"under 20":   {19.99, BandFair},
		"exactly 20": {20, BandPoor},
		"large":      {87.2, BandPoor},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, MAPEBand(td.mape))
		})
	}
	assert.Equal(t, "Needs improvement", BandPoor.Description())
}
