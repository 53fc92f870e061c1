package algo

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Interpolate fills interior NaN runs linearly over the row index and rounds every
// value to precision decimals, half to even. Leading and trailing NaN runs are left
// as they are since there is no neighbour to extrapolate from. The input is not modified.
func Interpolate(values []float64, precision int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)

	prev := -1
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			lo, hi := out[prev], v
			span := float64(i - prev)
			for k := prev + 1; k < i; k++ {
				out[k] = lo + (hi-lo)*float64(k-prev)/span
			}
		}
		prev = i
	}

	for i, v := range out {
		if !math.IsNaN(v) {
			out[i] = Round(v, precision)
		}
	}
	return out
}

// Round rounds x to prec decimals with ties going to the even neighbour.
func Round(x float64, prec int) float64 {
	return scalar.RoundEven(x, prec)
}

// CountMissing returns the number of NaN entries.
func CountMissing(values []float64) int {
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
