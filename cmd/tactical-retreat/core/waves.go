package core

import (
	"fmt"
	"math"
	"sort"
)

// DefaultWaveTolerance groups units arriving within a second of each other.
// Units with equal burn get equal delays up to float rounding, the
// tolerance absorbs that rounding.
const DefaultWaveTolerance = 1.0

// WaveSummary describes the next group of units to arrive. The zero value
// means nothing is pending.
type WaveSummary struct {
	NextWaveCount     int
	NextWaveETA       int     // seconds until the first unit of the wave, rounded up
	NextWaveRemaining float64 // exact seconds, never negative
	WaveCompleteETA   int     // seconds until the last unit of the wave, rounded up
	TotalPending      int
}

// Empty reports whether nothing is pending
func (w WaveSummary) Empty() bool {
	return w.TotalPending == 0
}

// Ready reports whether the next wave is due now
func (w WaveSummary) Ready() bool {
	return !w.Empty() && w.NextWaveRemaining <= 0
}

// Text renders the summary as a short status line, or "" when nothing is
// pending.
func (w WaveSummary) Text() string {
	if w.Empty() {
		return ""
	}

	ships := pluralShips(w.NextWaveCount)
	switch {
	case w.Ready():
		return ships + " now available"
	case w.NextWaveCount == w.TotalPending:
		return fmt.Sprintf("%s in %ds", ships, w.NextWaveETA)
	default:
		return fmt.Sprintf("%s in %ds (%d total)", ships, w.NextWaveETA, w.TotalPending)
	}
}

func pluralShips(n int) string {
	if n == 1 {
		return "1 ship"
	}
	return fmt.Sprintf("%d ships", n)
}

// Summarize finds the soonest wave among pending. Entries whose remaining
// time is within toleranceSeconds of the soonest one belong to that wave.
// The bound is inclusive so that a tolerance of 0 means exact equality and
// still counts the soonest entry itself; entries exactly one tolerance
// apart therefore share a wave.
func Summarize(pending []PendingEntry, toleranceSeconds float64) WaveSummary {
	if len(pending) == 0 {
		return WaveSummary{}
	}
	tolerance := math.Max(0, toleranceSeconds)

	soonest := math.Inf(1)
	for _, p := range pending {
		soonest = math.Min(soonest, p.RemainingSeconds)
	}

	count := 0
	latest := soonest
	for _, p := range pending {
		if math.Abs(p.RemainingSeconds-soonest) <= tolerance {
			count++
			latest = math.Max(latest, p.RemainingSeconds)
		}
	}

	remaining := math.Max(0, soonest)
	return WaveSummary{
		NextWaveCount:     count,
		NextWaveETA:       int(math.Ceil(remaining)),
		NextWaveRemaining: remaining,
		WaveCompleteETA:   int(math.Ceil(math.Max(0, latest))),
		TotalPending:      len(pending),
	}
}

// Wave is one group of simultaneous arrivals
type Wave struct {
	ETA     int
	UnitIDs []string
}

// GroupWaves partitions pending into waves, soonest first. Each wave is
// anchored at its earliest member and takes everything within tolerance
// of it.
func GroupWaves(pending []PendingEntry, toleranceSeconds float64) []Wave {
	if len(pending) == 0 {
		return nil
	}
	tolerance := math.Max(0, toleranceSeconds)

	sorted := make([]PendingEntry, len(pending))
	copy(sorted, pending)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RemainingSeconds < sorted[j].RemainingSeconds
	})

	var (
		waves  []Wave
		anchor float64
	)
	for i, p := range sorted {
		if i == 0 || p.RemainingSeconds-anchor > tolerance {
			anchor = p.RemainingSeconds
			waves = append(waves, Wave{ETA: int(math.Ceil(math.Max(0, anchor)))})
		}
		last := &waves[len(waves)-1]
		last.UnitIDs = append(last.UnitIDs, p.UnitID)
	}
	return waves
}
