package dataset

import "math"

// InterpolateLinear returns a copy of y with every missing run that has a known value on both
// sides filled proportionally to position. Missing values before the first or after the last
// known value are left as NaN.
func InterpolateLinear(y []float64) []float64 {
	out := make([]float64, len(y))
	copy(out, y)

	prev := -1
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (v - out[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				out[j] = out[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
	return out
}

// Clean returns a copy of the raw table sorted by year with interior gaps interpolated
func Clean(raw *Table) *Table {
	clean := raw.Clone()
	clean.SortByYear()
	clean.Interpolate()
	return clean
}
