package formulas

// DrawdownSeries returns (value - running max) / running max for every point.
// Points whose running max is not positive have a drawdown of 0.
func DrawdownSeries(values []float64) []float64 {
	drawdowns := make([]float64, len(values))
	if len(values) == 0 {
		return drawdowns
	}

	peak := values[0]
	for i, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			drawdowns[i] = (v - peak) / peak
		}
	}
	return drawdowns
}

// MaxDrawdown returns the most negative drawdown of a value path (<= 0).
func MaxDrawdown(values []float64) float64 {
	worst := 0.0
	for _, dd := range DrawdownSeries(values) {
		if dd < worst {
			worst = dd
		}
	}
	return worst
}
