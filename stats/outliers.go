package stats

import (
	"math"
	"sort"
)

// DetectOutliers returns the indices of values lying outside Tukey style fences. The fences are
// built from the lower and upper percentile values, widened by tukeyFactor times the distance
// between them. NaN values are ignored and never reported.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := dropNaN(y)
	if len(yCopy) == 0 {
		return nil
	}
	sort.Float64s(yCopy)
	lowerIdx := int(math.Floor(float64(len(yCopy)) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy)) * upperPerc))
	lowerIdx = min(lowerIdx, len(yCopy)-1)
	upperIdx = min(upperIdx, len(yCopy)-1)

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

func dropNaN(y []float64) []float64 {
	out := make([]float64, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
