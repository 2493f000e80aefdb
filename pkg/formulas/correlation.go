package formulas

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix computes the Pearson correlation between the given series.
// series[i] holds the observations of variable i; all series must share a length.
// The diagonal is always 1; pairs whose correlation is undefined (a constant
// series, or fewer than two observations) are reported as 0.
func CorrelationMatrix(series [][]float64) [][]float64 {
	n := len(series)
	if n == 0 {
		return [][]float64{}
	}
	obs := len(series[0])
	for _, s := range series {
		if len(s) != obs {
			return [][]float64{}
		}
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		out[i][i] = 1
	}
	if obs < 2 {
		return out
	}

	data := mat.NewDense(obs, n, nil)
	for j, s := range series {
		data.SetCol(j, s)
	}

	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, data, nil)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := corr.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			out[i][j] = v
			out[j][i] = v
		}
	}
	return out
}
