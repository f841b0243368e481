package reporting

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/VictoriaMetrics/metrics"
	"github.com/hashicorp/go-multierror"

	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/core"
)

// Metrics tracks one simulation run in its own metrics set
type Metrics struct {
	set *metrics.Set

	unitsHeld      *metrics.Counter
	unitsReleased  *metrics.Counter
	unitsReturned  *metrics.Counter
	unitsDeployed  *metrics.Counter
	releaseErrors  *metrics.Counter
	ticksRunning   *metrics.Counter
	ticksPaused    *metrics.Counter
	delayHistogram *metrics.Histogram

	mu          sync.Mutex
	pending     int
	nextWaveETA int
	simSeconds  float64
}

// NewMetrics registers all retreat metrics in a fresh set
func NewMetrics() *Metrics {
	m := &Metrics{set: metrics.NewSet()}

	m.unitsHeld = m.set.NewCounter("retreat_units_held_total")
	m.unitsReleased = m.set.NewCounter("retreat_units_released_total")
	m.unitsReturned = m.set.NewCounter("retreat_units_returned_total")
	m.unitsDeployed = m.set.NewCounter("retreat_units_deployed_total")
	m.releaseErrors = m.set.NewCounter("retreat_release_errors_total")
	m.ticksRunning = m.set.NewCounter(`retreat_ticks_total{state="running"}`)
	m.ticksPaused = m.set.NewCounter(`retreat_ticks_total{state="paused"}`)
	m.delayHistogram = m.set.NewHistogram("retreat_unit_delay_seconds")

	m.set.NewGauge("retreat_pending_units", func() float64 {
		m.mu.Lock()
		defer m.mu.Unlock()
		return float64(m.pending)
	})
	m.set.NewGauge("retreat_next_wave_eta_seconds", func() float64 {
		m.mu.Lock()
		defer m.mu.Unlock()
		return float64(m.nextWaveETA)
	})
	m.set.NewGauge("retreat_simulated_seconds", func() float64 {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.simSeconds
	})

	return m
}

// ObserveBuild records the units claimed when the schedule was built
func (m *Metrics) ObserveBuild(entries []core.DelayedEntry) {
	for _, e := range entries {
		m.unitsHeld.Inc()
		m.delayHistogram.Update(e.DelaySeconds)
	}

	m.mu.Lock()
	m.pending = len(entries)
	m.mu.Unlock()
}

// ObserveTick records the outcome of one simulation tick
func (m *Metrics) ObserveTick(simSeconds float64, paused bool, result core.TickResult, deployed int) {
	if paused {
		m.ticksPaused.Inc()
	} else {
		m.ticksRunning.Inc()
	}

	m.unitsReleased.Add(len(result.Released))
	m.unitsDeployed.Add(deployed)
	if result.Err != nil {
		m.releaseErrors.Add(countErrors(result.Err))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.simSeconds = simSeconds
	m.pending = result.Summary.TotalPending
	m.nextWaveETA = result.Summary.NextWaveETA
}

// ObserveTeardown records units returned when the engagement ended early
func (m *Metrics) ObserveTeardown(returned []string, err error) {
	m.unitsReturned.Add(len(returned))
	if err != nil {
		m.releaseErrors.Add(countErrors(err))
	}

	m.mu.Lock()
	m.pending = 0
	m.nextWaveETA = 0
	m.mu.Unlock()
}

// WritePrometheus writes all metrics in Prometheus text format
func (m *Metrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}

// Dump writes the metrics to a file
func (m *Metrics) Dump(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}

	m.WritePrometheus(f)
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// Released returns the released counter value
func (m *Metrics) Released() uint64 { return m.unitsReleased.Get() }

// Deployed returns the deployed counter value
func (m *Metrics) Deployed() uint64 { return m.unitsDeployed.Get() }

// ReleaseErrors returns the release error counter value
func (m *Metrics) ReleaseErrors() uint64 { return m.releaseErrors.Get() }

// countErrors counts the failures aggregated in err
func countErrors(err error) int {
	var me *multierror.Error
	if errors.As(err, &me) {
		return len(me.Errors)
	}
	return 1
}
