package timedataset

import "errors"

var ErrNoYears = errors.New("no years to extend from")

type YearSlice []int

func (y YearSlice) StartYear() int {
	if len(y) < 1 {
		return 0
	}
	return y[0]
}

func (y YearSlice) EndYear() int {
	if len(y) < 1 {
		return 0
	}
	return y[len(y)-1]
}

// Future returns the horizon years following the last year, i.e. last+1 through last+horizon
func (y YearSlice) Future(horizon int) ([]int, error) {
	if len(y) < 1 {
		return nil, ErrNoYears
	}
	if horizon < 0 {
		horizon = 0
	}
	last := y.EndYear()
	future := make([]int, 0, horizon)
	for k := 1; k <= horizon; k++ {
		future = append(future, last+k)
	}
	return future, nil
}
