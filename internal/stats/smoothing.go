package stats

// MovingAverage returns the trailing moving average of values. The window
// shrinks at the start of the series, so the first output equals the first
// input. A window below 1 is treated as 1.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}

	out := make([]float64, len(values))
	var running float64
	for i, v := range values {
		running += v
		if i >= window {
			running -= values[i-window]
		}
		n := window
		if i+1 < window {
			n = i + 1
		}
		out[i] = running / float64(n)
	}
	return out
}
