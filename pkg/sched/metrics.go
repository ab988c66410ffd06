package sched

import "math"

// Metrics is the final performance summary ("scheduler.perf"),
// computed once the run completes.
type Metrics struct {
	CPUUtilization float64
	AvgWTA         float64
	AvgWaiting     float64
	StdWTA         float64
}

// computeMetrics aggregates the per-finish weighted turnaround samples
// and per-process waiting times into the final summary. Two
// division-by-zero hazards are handled explicitly: zero finished
// processes, and zero total runtime. Both are reported as 0.00 rather
// than propagating NaN/Inf.
func computeMetrics(totalRuntime, idleTicks int, wtaSamples []float64, waitingTimes []int) Metrics {
	var metrics Metrics

	if totalRuntime > 0 {
		busy := totalRuntime - idleTicks
		metrics.CPUUtilization = 100.0 * float64(busy) / float64(totalRuntime)
	}

	if len(wtaSamples) > 0 {
		var sum float64
		for _, wta := range wtaSamples {
			sum += wta
		}

		metrics.AvgWTA = sum / float64(len(wtaSamples))

		var sqDiff float64
		for _, wta := range wtaSamples {
			d := wta - metrics.AvgWTA
			sqDiff += d * d
		}

		metrics.StdWTA = math.Sqrt(sqDiff / float64(len(wtaSamples)))
	}

	if len(waitingTimes) > 0 {
		var sum int
		for _, w := range waitingTimes {
			sum += w
		}

		metrics.AvgWaiting = float64(sum) / float64(len(waitingTimes))
	}

	return metrics
}
