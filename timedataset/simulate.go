package timedataset

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// GenerateYears returns n consecutive years starting at start
func GenerateYears(start, n int) []int {
	years := make([]int, 0, n)
	for i := 0; i < n; i++ {
		years = append(years, start+i)
	}
	return years
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// SetNaN marks the values at the given indices as missing
func (s Series) SetNaN(idxs ...int) Series {
	for _, idx := range idxs {
		if idx < 0 || idx >= len(s) {
			continue
		}
		s[idx] = math.NaN()
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GenerateTrendY returns a straight line starting at bias increasing by slope per step
func GenerateTrendY(n int, bias, slope float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, bias+slope*float64(i))
	}
	return Series(y)
}

// GenerateNoise returns normally distributed noise scaled by noiseScale using a seeded source so
// runs are reproducible
func GenerateNoise(n int, noiseScale float64, seed uint64) Series {
	rng := rand.New(rand.NewPCG(seed, seed))
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, rng.NormFloat64()*noiseScale)
	}
	return Series(y)
}
