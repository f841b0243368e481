package core

import (
	"errors"

	"github.com/picogrid/tactical-retreat/pkg/logger"
)

// StatusTitle is the heading used for reinforcement status lines
const StatusTitle = "Enemy Reinforcements"

// StatusSink displays the reinforcement status line
type StatusSink interface {
	ShowStatus(title, text string)
}

// BoostState records which sides were burning at the moment the
// engagement started.
type BoostState struct {
	Fleeing  bool
	Pursuing bool
}

// ReferenceSpeed adjusts the fleeing fleet's minimum burn for boosts. A
// boosting fleeing side was effectively faster, so pursuers wait longer; a
// boosting pursuer closes the gap.
func ReferenceSpeed(fleetMin int, boost BoostState, modifier int) int {
	ref := fleetMin
	if boost.Fleeing {
		ref += modifier
	}
	if boost.Pursuing {
		ref -= modifier
	}
	return ref
}

// EngagementContext is what the host knows when an engagement starts
type EngagementContext struct {
	// Pursuit is true when the friendly side is fleeing
	Pursuit bool

	// Simulated engagements (practice, missions) are never scheduled
	Simulated bool

	// Fleeing is the friendly fleet whose slowest unit sets the pace
	Fleeing []*Unit

	Boost BoostState
}

// TickResult is the outcome of one Engagement.Tick
type TickResult struct {
	Released []string
	Summary  WaveSummary
	Err      error // non-fatal release warnings
}

// Engagement wires settings, speeds and a DelaySchedule together for the
// lifetime of one engagement. An inactive engagement does nothing.
type Engagement struct {
	settings  Settings
	schedule  *DelaySchedule
	fleetMin  int
	reference int
	sink      StatusSink
	log       logger.Logger
	ended     bool
}

// LoadSettings reads settings from src, falling back to defaults when the
// source is missing or unavailable.
func LoadSettings(src SettingsSource, log logger.Logger) Settings {
	if log == nil {
		log = logger.Discard()
	}

	settings := DefaultSettings()
	if src != nil {
		s, err := src.Settings()
		switch {
		case err == nil:
			settings = s
		case errors.Is(err, ErrConfigurationUnavailable):
			log.Debugf("Settings unavailable, using defaults: %v", err)
		default:
			log.Warnf("Failed to read settings, using defaults: %v", err)
		}
	}

	settings, fixes := settings.Sanitize()
	for _, fix := range fixes {
		log.Warn(fix)
	}
	return settings
}

// StartEngagement reads settings and, when the feature applies, builds the
// delay schedule from the pool's current reserve.
func StartEngagement(ec EngagementContext, src SettingsSource, pool ReservePool, speeds SpeedSource, log logger.Logger) *Engagement {
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithPrefix("retreat")

	e := &Engagement{
		settings: LoadSettings(src, log),
		log:      log,
	}

	switch {
	case ec.Simulated:
		log.Info("Skipping (simulated engagement)")
		return e
	case !e.settings.Enabled:
		log.Info("Disabled in settings")
		return e
	case !ec.Pursuit:
		log.Info("Not a pursuit, skipping")
		return e
	case pool == nil:
		log.Warn("No reserve pool available, skipping")
		return e
	}

	log.Info("Pursuit detected, friendly fleet is fleeing")

	metric := NewSpeedMetric(speeds, log)
	e.fleetMin = metric.FleetMinSpeed(ec.Fleeing)
	e.reference = e.fleetMin
	if e.settings.BoostModifierEnabled {
		e.reference = ReferenceSpeed(e.fleetMin, ec.Boost, e.settings.ReferenceSpeedModifier)
	}
	if e.reference != e.fleetMin {
		log.Infof("Effective fleeing burn %d (base %d)", e.reference, e.fleetMin)
	} else {
		log.Infof("Fleeing fleet min burn %d", e.fleetMin)
	}

	schedule := NewDelaySchedule(pool, metric, log)
	if err := schedule.Build(pool.Snapshot(), e.reference, e.settings.PerPointSeconds, e.settings.MaxDelaySeconds); err != nil {
		log.Errorf("Failed to build delay schedule, continuing without it: %v", err)
		_, _ = schedule.Teardown()
		return e
	}

	e.schedule = schedule
	return e
}

// SetStatusSink attaches a display for status lines
func (e *Engagement) SetStatusSink(sink StatusSink) {
	e.sink = sink
}

// Active reports whether a schedule is running
func (e *Engagement) Active() bool {
	return e.schedule != nil && !e.ended
}

// Settings returns the settings this engagement was started with
func (e *Engagement) Settings() Settings { return e.settings }

// FleetMinSpeed returns the fleeing fleet's slowest burn
func (e *Engagement) FleetMinSpeed() int { return e.fleetMin }

// ReferenceSpeed returns the burn delays were computed against
func (e *Engagement) ReferenceSpeed() int { return e.reference }

// Schedule returns the underlying schedule, nil when inactive
func (e *Engagement) Schedule() *DelaySchedule { return e.schedule }

// Summary computes the current wave summary
func (e *Engagement) Summary() WaveSummary {
	if e.schedule == nil {
		return WaveSummary{}
	}
	return Summarize(e.schedule.PendingEntries(), e.settings.WaveToleranceSeconds)
}

// Tick advances the engagement by deltaSeconds unless paused. While paused
// no time passes; the first unpaused tick catches up on anything that
// became due.
func (e *Engagement) Tick(deltaSeconds float64, paused bool) TickResult {
	if !e.Active() {
		return TickResult{}
	}

	var result TickResult
	if !paused {
		result.Released, result.Err = e.schedule.Advance(deltaSeconds)
		if result.Err != nil {
			e.log.Warnf("Release warnings: %v", result.Err)
		}
	}

	result.Summary = e.Summary()
	if e.sink != nil && !result.Summary.Empty() {
		e.sink.ShowStatus(StatusTitle, result.Summary.Text())
	}
	return result
}

// End releases everything still held. It must be called when the
// engagement finishes, however it finishes.
func (e *Engagement) End() ([]string, error) {
	if e.ended || e.schedule == nil {
		e.ended = true
		return nil, nil
	}
	e.ended = true
	return e.schedule.Teardown()
}
