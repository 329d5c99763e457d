// Package telemetry collects window statistics and per-phase timings for
// the simulation host.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Agents    int `csv:"agents"`
	Spawned   int `csv:"spawned"`
	Despawned int `csv:"despawned"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Nearest-target distances (squared, sampled at window end)
	NearestMean float64 `csv:"nearest_mean"`
	NearestMin  float64 `csv:"nearest_min"`

	// Boundary interactions during the window
	EdgeCrossings int `csv:"edge_crossings"`
}

// SummarizeSamples computes the mean and p10/p50/p90 empirical quantiles
// of values. Returns zeros for an empty slice.
func SummarizeSamples(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// CollectWindow builds WindowStats from end-of-window buffer samples.
// velocities is the interleaved x/y buffer; nearest holds squared
// distances, with MaxFloat32 entries (no targets in range) skipped.
func CollectWindow(startTick, endTick int32, simTime float64, velocities, nearest []float32, spawned, despawned, crossings int) WindowStats {
	count := len(velocities) / 2
	speeds := make([]float64, 0, count)
	for i := 0; i < count; i++ {
		vx := float64(velocities[2*i])
		vy := float64(velocities[2*i+1])
		speeds = append(speeds, math.Sqrt(vx*vx+vy*vy))
	}

	s := WindowStats{
		WindowStartTick: startTick,
		WindowEndTick:   endTick,
		SimTimeSec:      simTime,
		Agents:          count,
		Spawned:         spawned,
		Despawned:       despawned,
		EdgeCrossings:   crossings,
	}
	s.SpeedMean, s.SpeedP10, s.SpeedP50, s.SpeedP90 = SummarizeSamples(speeds)

	var sum float64
	minDist := math.Inf(1)
	valid := 0
	for _, d := range nearest {
		if d == math.MaxFloat32 {
			continue
		}
		sum += float64(d)
		if float64(d) < minDist {
			minDist = float64(d)
		}
		valid++
	}
	if valid > 0 {
		s.NearestMean = sum / float64(valid)
		s.NearestMin = minDist
	}

	return s
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agents", s.Agents,
		"spawned", s.Spawned,
		"despawned", s.Despawned,
		"speed_mean", s.SpeedMean,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"nearest_mean", s.NearestMean,
		"nearest_min", s.NearestMin,
		"edge_crossings", s.EdgeCrossings,
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("spawned", s.Spawned),
		slog.Int("despawned", s.Despawned),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("nearest_mean", s.NearestMean),
		slog.Float64("nearest_min", s.NearestMin),
		slog.Int("edge_crossings", s.EdgeCrossings),
	)
}
