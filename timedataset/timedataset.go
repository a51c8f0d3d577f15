package timedataset

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMonotonic       = errors.New("years are not in ascending order")
	ErrDatasetLenMismatch = errors.New("years have a different length than observations")
)

// TimeDataset represents a yearly series storing a slice of years and values.
// Both must be of the same length and years must be non-decreasing.
type TimeDataset struct {
	Years []int
	Y     []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a year and value slice.
// Repeated years are allowed, decreasing years are not.
func NewUnivariateDataset(years []int, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(years) != len(y) {
		return nil, fmt.Errorf(
			"years has length of %d, but values has a length of %d, %w",
			len(years), len(y), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(years); i++ {
		if years[i] < years[i-1] {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMonotonic)
		}
	}

	yearSeries := make([]int, len(years))
	ySeries := make([]float64, len(y))
	copy(yearSeries, years)
	copy(ySeries, y)
	td := &TimeDataset{
		Years: yearSeries,
		Y:     ySeries,
	}

	return td, nil
}

// DropMissing returns copies of the years and values with every pair whose value is NaN removed
func DropMissing(years []int, y []float64) ([]int, []float64, error) {
	if len(years) != len(y) {
		return nil, nil, fmt.Errorf(
			"years has length of %d, but values has a length of %d, %w",
			len(years), len(y), ErrDatasetLenMismatch,
		)
	}

	outYears := make([]int, 0, len(years))
	outY := make([]float64, 0, len(y))
	for i := 0; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		outYears = append(outYears, years[i])
		outY = append(outY, y[i])
	}
	return outYears, outY, nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	yearSeries := make([]int, len(td.Years))
	ySeries := make([]float64, len(td.Y))
	copy(yearSeries, td.Years)
	copy(ySeries, td.Y)
	return &TimeDataset{
		Years: yearSeries,
		Y:     ySeries,
	}
}

// Len returns the number of observations
func (td *TimeDataset) Len() int {
	if td == nil {
		return 0
	}
	return len(td.Y)
}
