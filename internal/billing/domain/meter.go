package domain

// UsageDelta returns the non-negative consumption between two meter
// values. A current value below the previous one (meter reset or a
// mis-keyed reading) clamps to zero usage; clamped reports it so the
// caller can surface the anomaly without changing the billed amount.
func UsageDelta(prev, current float64) (usage float64, clamped bool) {
	if current < prev {
		return 0, true
	}
	return current - prev, false
}

// UsageCost prices a consumption at a per-unit rate.
func UsageCost(usage, rate float64) float64 {
	return usage * rate
}
