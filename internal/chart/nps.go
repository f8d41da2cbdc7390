package chart

import (
	"errors"
	"sort"
)

// Summary is the measured density of a chart's guitar part.
type Summary struct {
	AvgNPS  float64
	PeakNPS float64
}

var errNoNotes = errors.New("chart has no countable guitar notes")

// measure converts chord onset ticks into average and peak notes-per-second.
// Duplicate ticks are merged first: simultaneous strikes count once. Peak is
// evaluated over a one-second window anchored at every onset, not a fixed
// grid, so density spikes straddling bucket boundaries are not undercounted.
func measure(onsetTicks []int64, tempo *TempoMap) (Summary, error) {
	if len(onsetTicks) == 0 {
		return Summary{}, errNoNotes
	}

	unique := make([]int64, 0, len(onsetTicks))
	seen := make(map[int64]struct{}, len(onsetTicks))
	for _, tick := range onsetTicks {
		if _, dup := seen[tick]; dup {
			continue
		}
		seen[tick] = struct{}{}
		unique = append(unique, tick)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	times := make([]float64, len(unique))
	for i, tick := range unique {
		times[i] = tempo.TimeAt(tick)
	}

	duration := times[len(times)-1]
	if duration <= 0 {
		return Summary{}, errNoNotes
	}

	summary := Summary{AvgNPS: float64(len(times)) / duration}

	// Sliding window: for each onset as window start, advance the end
	// pointer; onsets are sorted so this is linear.
	end := 0
	for start := 0; start < len(times); start++ {
		if end < start {
			end = start
		}
		for end < len(times) && times[end] < times[start]+1.0 {
			end++
		}
		if count := float64(end - start); count > summary.PeakNPS {
			summary.PeakNPS = count
		}
	}

	return summary, nil
}
