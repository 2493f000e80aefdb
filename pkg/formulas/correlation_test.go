package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationMatrix_PerfectlyCorrelated(t *testing.T) {
	a := []float64{0.01, 0.02, -0.01, 0.03}
	b := []float64{0.02, 0.04, -0.02, 0.06}
	c := []float64{-0.01, -0.02, 0.01, -0.03}

	m := CorrelationMatrix([][]float64{a, b, c})

	require.Len(t, m, 3)
	for i := range m {
		assert.InDelta(t, 1.0, m[i][i], 1e-12)
	}
	assert.InDelta(t, 1.0, m[0][1], 1e-9)
	assert.InDelta(t, -1.0, m[0][2], 1e-9)
	assert.InDelta(t, m[1][2], m[2][1], 1e-12)
}

func TestCorrelationMatrix_ConstantSeriesIsZero(t *testing.T) {
	m := CorrelationMatrix([][]float64{{0, 0, 0}, {0.01, -0.01, 0.02}})

	require.Len(t, m, 2)
	assert.Equal(t, 1.0, m[0][0])
	assert.Equal(t, 0.0, m[0][1])
	assert.False(t, math.IsNaN(m[1][0]))
}

func TestCorrelationMatrix_SingleObservation(t *testing.T) {
	m := CorrelationMatrix([][]float64{{0.01}, {0.02}})

	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, m)
}

func TestCorrelationMatrix_Empty(t *testing.T) {
	assert.Empty(t, CorrelationMatrix(nil))
	assert.Empty(t, CorrelationMatrix([][]float64{{1, 2}, {1}}))
}

func TestSMA(t *testing.T) {
	assert.Nil(t, SMA([]float64{1, 2}, 3))

	sma := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, sma, 5)
	assert.True(t, math.IsNaN(sma[0]))
	assert.True(t, math.IsNaN(sma[1]))
	assert.InDelta(t, 2.0, sma[2], 1e-12)
	assert.InDelta(t, 3.0, sma[3], 1e-12)
	assert.InDelta(t, 4.0, sma[4], 1e-12)
}
