package stats

import (
	"math"
	"sort"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics of the non-missing values of a column
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Q25   float64 `json:"q25"`
	Q50   float64 `json:"q50"`
	Q75   float64 `json:"q75"`
	Max   float64 `json:"max"`
}

// Describe summarizes the values of y ignoring NaNs. Std is the sample standard deviation.
// With no values every statistic but Count is NaN, with a single value Std is NaN.
func Describe(y []float64) Summary {
	vals := dropNaN(y)
	nan := math.NaN()
	s := Summary{
		Count: len(vals),
		Mean:  nan,
		Std:   nan,
		Min:   nan,
		Q25:   nan,
		Q50:   nan,
		Q75:   nan,
		Max:   nan,
	}
	if len(vals) == 0 {
		return s
	}

	sort.Float64s(vals)
	s.Min = floats.Min(vals)
	s.Max = floats.Max(vals)
	if len(vals) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(vals, nil)
	} else {
		s.Mean = vals[0]
	}
	s.Q25 = Quantile(0.25, vals)
	s.Q50 = Quantile(0.50, vals)
	s.Q75 = Quantile(0.75, vals)
	return s
}

// Quantile linearly interpolates between the closest ranks at position p*(n-1) of the sorted
// values, matching the default quantile of pandas and numpy
func Quantile(p float64, sorted []float64) float64 {
	if len(sorted) == 0 || !(p >= 0 && p <= 1) {
		return math.NaN()
	}
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Missing counts the NaN values of y
func Missing(y []float64) int {
	var cnt int
	for _, v := range y {
		if math.IsNaN(v) {
			cnt++
		}
	}
	return cnt
}

type summaryJSON struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Std   *float64 `json:"std"`
	Min   *float64 `json:"min"`
	Q25   *float64 `json:"q25"`
	Q50   *float64 `json:"q50"`
	Q75   *float64 `json:"q75"`
	Max   *float64 `json:"max"`
}

// MarshalJSON encodes undefined statistics as null
func (s Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(summaryJSON{
		Count: s.Count,
		Mean:  nullable(s.Mean),
		Std:   nullable(s.Std),
		Min:   nullable(s.Min),
		Q25:   nullable(s.Q25),
		Q50:   nullable(s.Q50),
		Q75:   nullable(s.Q75),
		Max:   nullable(s.Max),
	})
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
