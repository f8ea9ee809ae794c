package telemetry

import (
	"log/slog"
	"math"
	"sort"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Critter counts at window end
	Critters     int `csv:"critters"`
	DoneCritters int `csv:"done"`

	// Activity during window
	Distance       float64 `csv:"distance"`
	BlockedMoves   int     `csv:"blocked_moves"`
	ExploreTicks   int     `csv:"explore_ticks"`
	InhibitedTicks int     `csv:"inhibited_ticks"`
	Latches        int     `csv:"latches"`
	TargetsReached int     `csv:"targets_reached"`

	// Colours seen per critter (sampled at window end)
	SeenMean float64 `csv:"seen_mean"`
	SeenP10  float64 `csv:"seen_p10"`
	SeenP50  float64 `csv:"seen_p50"`
	SeenP90  float64 `csv:"seen_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation between closest ranks
	rank := p * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// ComputeStats computes mean and percentiles of a value slice.
// The input slice is not modified.
func ComputeStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean = sum / float64(len(sorted))

	return mean, Percentile(sorted, 0.1), Percentile(sorted, 0.5), Percentile(sorted, 0.9)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("critters", s.Critters),
		slog.Int("done", s.DoneCritters),
		slog.Float64("distance", s.Distance),
		slog.Int("blocked_moves", s.BlockedMoves),
		slog.Int("explore_ticks", s.ExploreTicks),
		slog.Int("inhibited_ticks", s.InhibitedTicks),
		slog.Int("latches", s.Latches),
		slog.Int("targets_reached", s.TargetsReached),
		slog.Float64("seen_mean", s.SeenMean),
		slog.Float64("seen_p50", s.SeenP50),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
