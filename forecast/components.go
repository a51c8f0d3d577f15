package forecast

// Components holds the per observation smoothing state of a fit. S1 and S2 are the
// first and second order smoothed values, A the level and B the slope derived from them.
// All slices have the same length as the training observations.
type Components struct {
	S1 []float64 `json:"s1"`
	S2 []float64 `json:"s2"`
	A  []float64 `json:"a"`
	B  []float64 `json:"b"`
}

func newComponents(n int) Components {
	return Components{
		S1: make([]float64, n),
		S2: make([]float64, n),
		A:  make([]float64, n),
		B:  make([]float64, n),
	}
}

// Copy returns a deep copy of the components
func (c Components) Copy() Components {
	return Components{
		S1: copySlice(c.S1),
		S2: copySlice(c.S2),
		A:  copySlice(c.A),
		B:  copySlice(c.B),
	}
}

// Len returns the number of observations the components describe
func (c Components) Len() int {
	return len(c.S1)
}

func copySlice(src []float64) []float64 {
	if src == nil {
		return nil
	}
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}
