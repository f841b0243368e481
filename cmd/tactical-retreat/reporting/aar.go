package reporting

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/core"
	"github.com/picogrid/tactical-retreat/pkg/logger"
)

// Outcome is how a held unit left the schedule
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeReleased Outcome = "released"
	OutcomeReturned Outcome = "returned" // engagement ended first
)

// UnitRecord is the after action timeline of one held unit
type UnitRecord struct {
	ID         string
	Name       string
	Burn       int
	Delay      float64
	Outcome    Outcome
	ReleasedAt float64 // simulated seconds, -1 when never released
	DeployedAt float64 // simulated seconds, -1 when never deployed
}

// AfterAction collects what happened to every held unit during a run
type AfterAction struct {
	mu sync.Mutex

	EngagementID string
	StartTime    time.Time
	EndTime      time.Time

	FleetMinSpeed  int
	ReferenceSpeed int
	Settings       core.Settings
	Ticks          int
	PausedTicks    int
	SimSeconds     float64

	records map[string]*UnitRecord
	order   []string
	waves   []core.Wave // arrival plan at engagement start
}

// NewAfterAction creates a report for an engagement
func NewAfterAction(engagementID string) *AfterAction {
	return &AfterAction{
		EngagementID: engagementID,
		StartTime:    time.Now(),
		records:      make(map[string]*UnitRecord),
	}
}

// RecordEngagement stores the engagement parameters and the held units
func (a *AfterAction) RecordEngagement(e *core.Engagement) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.FleetMinSpeed = e.FleetMinSpeed()
	a.ReferenceSpeed = e.ReferenceSpeed()
	a.Settings = e.Settings()

	if e.Schedule() == nil {
		return
	}
	for _, entry := range e.Schedule().Entries() {
		a.records[entry.Unit.ID] = &UnitRecord{
			ID:         entry.Unit.ID,
			Name:       entry.Unit.Label(),
			Burn:       entry.Speed,
			Delay:      entry.DelaySeconds,
			Outcome:    OutcomePending,
			ReleasedAt: -1,
			DeployedAt: -1,
		}
		a.order = append(a.order, entry.Unit.ID)
	}
	a.waves = core.GroupWaves(e.Schedule().PendingEntries(), a.Settings.WaveToleranceSeconds)
}

// Waves returns the arrival plan recorded at engagement start
func (a *AfterAction) Waves() []core.Wave {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]core.Wave(nil), a.waves...)
}

// RecordTick stores one tick's releases and deployments
func (a *AfterAction) RecordTick(simSeconds float64, paused bool, released []string, deployed []*core.Unit) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.Ticks++
	if paused {
		a.PausedTicks++
	}
	a.SimSeconds = simSeconds

	for _, id := range released {
		if r, ok := a.records[id]; ok && r.Outcome == OutcomePending {
			r.Outcome = OutcomeReleased
			r.ReleasedAt = simSeconds
		}
	}
	for _, u := range deployed {
		if r, ok := a.records[u.ID]; ok && r.DeployedAt < 0 {
			r.DeployedAt = simSeconds
		}
	}
}

// RecordTeardown marks units handed back when the engagement ended
func (a *AfterAction) RecordTeardown(returned []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, id := range returned {
		if r, ok := a.records[id]; ok && r.Outcome == OutcomePending {
			r.Outcome = OutcomeReturned
		}
	}
	a.EndTime = time.Now()
}

// Records returns the unit records sorted by delay, then build order
func (a *AfterAction) Records() []UnitRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]UnitRecord, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.records[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Delay < out[j].Delay
	})
	return out
}

// Counts returns how many held units ended in each outcome
func (a *AfterAction) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, r := range a.Records() {
		counts[r.Outcome]++
	}
	return counts
}

// Table renders the unit records
func (a *AfterAction) Table() *logger.Table {
	table := logger.NewTable("UNIT", "BURN", "DELAY", "OUTCOME", "RELEASED", "DEPLOYED")
	for _, r := range a.Records() {
		table.AddRow(
			r.Name,
			strconv.Itoa(r.Burn),
			fmt.Sprintf("%.0fs", r.Delay),
			string(r.Outcome),
			formatSimTime(r.ReleasedAt),
			formatSimTime(r.DeployedAt),
		)
	}
	return table
}

// Fprint writes the full report to w
func (a *AfterAction) Fprint(w io.Writer) {
	counts := a.Counts()

	a.mu.Lock()
	_, _ = fmt.Fprintf(w, "After Action Report - engagement %s\n", a.EngagementID)
	_, _ = fmt.Fprintf(w, "  Fleeing min burn: %d (reference %d)\n", a.FleetMinSpeed, a.ReferenceSpeed)
	_, _ = fmt.Fprintf(w, "  Delay per burn: %.0fs, max delay: %.0fs\n", a.Settings.PerPointSeconds, a.Settings.MaxDelaySeconds)
	_, _ = fmt.Fprintf(w, "  Ticks: %d (%d paused), simulated time: %s\n", a.Ticks, a.PausedTicks, formatSimTime(a.SimSeconds))
	held := len(a.order)
	plan := a.wavePlan()
	a.mu.Unlock()

	_, _ = fmt.Fprintf(w, "  Held: %d, released: %d, returned at end: %d\n\n",
		held, counts[OutcomeReleased], counts[OutcomeReturned])

	if held == 0 {
		_, _ = fmt.Fprintln(w, "  No reinforcements were delayed")
		return
	}
	a.Table().Fprint(w)

	if len(plan) > 0 {
		_, _ = fmt.Fprintln(w, "\n  Planned waves:")
		for _, line := range plan {
			_, _ = fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

// wavePlan renders the recorded waves. Callers hold a.mu.
func (a *AfterAction) wavePlan() []string {
	lines := make([]string, 0, len(a.waves))
	for i, wave := range a.waves {
		names := make([]string, 0, len(wave.UnitIDs))
		for _, id := range wave.UnitIDs {
			if r, ok := a.records[id]; ok {
				names = append(names, r.Name)
			} else {
				names = append(names, id)
			}
		}
		lines = append(lines, fmt.Sprintf("Wave %d: %s at %s (%s)",
			i+1, shipCount(len(names)), formatSimTime(float64(wave.ETA)), strings.Join(names, ", ")))
	}
	return lines
}

func shipCount(n int) string {
	if n == 1 {
		return "1 ship"
	}
	return strconv.Itoa(n) + " ships"
}

func formatSimTime(seconds float64) string {
	if seconds < 0 {
		return "-"
	}
	return (time.Duration(seconds * float64(time.Second))).Round(time.Second).String()
}
