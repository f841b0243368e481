package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/picogrid/tactical-retreat/pkg/logger"
)

type recordingSink struct {
	titles []string
	lines  []string
}

func (r *recordingSink) ShowStatus(title, text string) {
	r.titles = append(r.titles, title)
	r.lines = append(r.lines, text)
}

type failingSettings struct{ err error }

func (f failingSettings) Settings() (Settings, error) { return Settings{}, f.err }

func pursuitOf(fleeing ...*Unit) EngagementContext {
	return EngagementContext{Pursuit: true, Fleeing: fleeing}
}

func pursuers() []*Unit {
	return []*Unit{burnUnit("p10", 10), burnUnit("p9", 9), burnUnit("p7", 7), burnUnit("p5", 5)}
}

func TestReferenceSpeed(t *testing.T) {
	tests := []struct {
		name  string
		boost BoostState
		want  int
	}{
		{"no boost", BoostState{}, 8},
		{"fleeing boosted", BoostState{Fleeing: true}, 10},
		{"pursuing boosted", BoostState{Pursuing: true}, 6},
		{"both boosted", BoostState{Fleeing: true, Pursuing: true}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReferenceSpeed(8, tt.boost, 2); got != tt.want {
				t.Errorf("ReferenceSpeed() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDisabledLeavesPoolUntouched(t *testing.T) {
	pool := NewReserve(pursuers()...)
	settings := DefaultSettings()
	settings.Enabled = false

	e := StartEngagement(pursuitOf(burnUnit("f", 10)), StaticSettings(settings), pool, nil, logger.Discard())

	if e.Active() {
		t.Fatalf("Disabled engagement must not be active")
	}
	if pool.Len() != 4 {
		t.Errorf("Expected pool untouched, got %d units", pool.Len())
	}

	result := e.Tick(100, false)
	if len(result.Released) != 0 || result.Err != nil {
		t.Errorf("Inactive tick should do nothing, got %+v", result)
	}
	if returned, err := e.End(); err != nil || len(returned) != 0 {
		t.Errorf("Inactive end should do nothing, got %v, %v", returned, err)
	}
}

func TestStartEngagementSkips(t *testing.T) {
	tests := []struct {
		name string
		ec   EngagementContext
	}{
		{"simulated", EngagementContext{Pursuit: true, Simulated: true, Fleeing: []*Unit{burnUnit("f", 10)}}},
		{"not a pursuit", EngagementContext{Fleeing: []*Unit{burnUnit("f", 10)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewReserve(pursuers()...)
			e := StartEngagement(tt.ec, nil, pool, nil, logger.Discard())
			if e.Active() {
				t.Errorf("Expected inactive engagement")
			}
			if pool.Len() != 4 {
				t.Errorf("Expected pool untouched, got %d units", pool.Len())
			}
		})
	}
}

func TestStartEngagementNilPool(t *testing.T) {
	e := StartEngagement(pursuitOf(burnUnit("f", 10)), nil, nil, nil, logger.Discard())
	if e.Active() {
		t.Errorf("Expected inactive engagement without a pool")
	}
}

func TestStartEngagementSettingsUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unavailable", ErrConfigurationUnavailable},
		{"wrapped unavailable", fmt.Errorf("settings file: %w", ErrConfigurationUnavailable)},
		{"other failure", errors.New("disk on fire")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewReserve(pursuers()...)
			e := StartEngagement(pursuitOf(burnUnit("f", 10)), failingSettings{tt.err}, pool, nil, logger.Discard())

			if e.Settings() != DefaultSettings() {
				t.Errorf("Expected defaults, got %+v", e.Settings())
			}
			if !e.Active() {
				t.Fatalf("Expected defaults to enable the feature")
			}
			if e.Schedule().HeldCount() != 3 {
				t.Errorf("Expected 3 held units with defaults, got %d", e.Schedule().HeldCount())
			}
		})
	}
}

func TestLoadSettingsSanitizes(t *testing.T) {
	bad := Settings{
		Enabled:                true,
		PerPointSeconds:        -1,
		MaxDelaySeconds:        -30,
		ReferenceSpeedModifier: 3,
		WaveToleranceSeconds:   -2,
	}

	got := LoadSettings(StaticSettings(bad), logger.Discard())

	if got.PerPointSeconds != DefaultPerPointSeconds {
		t.Errorf("PerPointSeconds = %v, want %v", got.PerPointSeconds, DefaultPerPointSeconds)
	}
	if got.MaxDelaySeconds != DefaultMaxDelaySeconds {
		t.Errorf("MaxDelaySeconds = %v, want %v", got.MaxDelaySeconds, DefaultMaxDelaySeconds)
	}
	if got.WaveToleranceSeconds != DefaultWaveTolerance {
		t.Errorf("WaveToleranceSeconds = %v, want %v", got.WaveToleranceSeconds, DefaultWaveTolerance)
	}
	if got.ReferenceSpeedModifier != 3 {
		t.Errorf("Valid values must be kept, got modifier %d", got.ReferenceSpeedModifier)
	}
}

func TestStartEngagementBoost(t *testing.T) {
	tests := []struct {
		name          string
		boost         BoostState
		enabled       bool
		wantReference int
		wantHeld      int
	}{
		{"no boost", BoostState{}, true, 8, 2},
		{"fleeing boosted", BoostState{Fleeing: true}, true, 10, 3},
		{"pursuing boosted", BoostState{Pursuing: true}, true, 6, 1},
		{"modifier disabled", BoostState{Fleeing: true}, false, 8, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			settings.BoostModifierEnabled = tt.enabled
			settings.ReferenceSpeedModifier = 2

			ec := pursuitOf(burnUnit("f1", 12), burnUnit("f2", 8))
			ec.Boost = tt.boost

			e := StartEngagement(ec, StaticSettings(settings), NewReserve(pursuers()...), nil, logger.Discard())

			if e.FleetMinSpeed() != 8 {
				t.Errorf("FleetMinSpeed() = %d, want 8", e.FleetMinSpeed())
			}
			if e.ReferenceSpeed() != tt.wantReference {
				t.Errorf("ReferenceSpeed() = %d, want %d", e.ReferenceSpeed(), tt.wantReference)
			}
			if got := e.Schedule().HeldCount(); got != tt.wantHeld {
				t.Errorf("HeldCount() = %d, want %d", got, tt.wantHeld)
			}
		})
	}
}

func TestEngagementTickAndStatus(t *testing.T) {
	pool := NewReserve(pursuers()...)
	sink := &recordingSink{}

	e := StartEngagement(pursuitOf(burnUnit("f", 10)), StaticSettings(DefaultSettings()), pool, nil, logger.Discard())
	e.SetStatusSink(sink)

	result := e.Tick(0, false)
	if len(result.Released) != 0 {
		t.Errorf("Nothing should be due at t=0, got %v", result.Released)
	}
	if got := result.Summary.Text(); got != "1 ship in 30s (3 total)" {
		t.Errorf("Unexpected status %q", got)
	}

	result = e.Tick(30, false)
	if !equalIDs(result.Released, []string{"p9"}) {
		t.Errorf("Expected p9 released, got %v", result.Released)
	}

	_ = e.Tick(150, false)
	if !e.Schedule().Drained() {
		t.Errorf("Expected drained after 180s")
	}

	if len(sink.lines) != 2 {
		t.Fatalf("Expected 2 status lines while units were pending, got %v", sink.lines)
	}
	for _, title := range sink.titles {
		if title != StatusTitle {
			t.Errorf("Unexpected status title %q", title)
		}
	}
	if pool.Len() != 4 {
		t.Errorf("Expected every unit back in the pool, got %d", pool.Len())
	}
}

func TestEngagementPausedTicks(t *testing.T) {
	pool := NewReserve(pursuers()...)
	e := StartEngagement(pursuitOf(burnUnit("f", 10)), nil, pool, nil, logger.Discard())

	for i := 0; i < 10; i++ {
		if result := e.Tick(100, true); len(result.Released) != 0 {
			t.Fatalf("Released while paused: %v", result.Released)
		}
	}
	if e.Schedule().Elapsed() != 0 {
		t.Errorf("Paused ticks must not move the clock, got %v", e.Schedule().Elapsed())
	}

	// One large step catches up on everything due
	result := e.Tick(100, false)
	if !equalIDs(result.Released, []string{"p9", "p7"}) {
		t.Errorf("Expected p9 and p7 after catch-up, got %v", result.Released)
	}
}

func TestEngagementEndReturnsHeld(t *testing.T) {
	pool := NewReserve(pursuers()...)
	e := StartEngagement(pursuitOf(burnUnit("f", 10)), nil, pool, nil, logger.Discard())

	_ = e.Tick(30, false)
	returned, err := e.End()
	if err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if !equalIDs(returned, []string{"p7", "p5"}) {
		t.Errorf("Expected p7 and p5 returned, got %v", returned)
	}
	if e.Active() {
		t.Errorf("Engagement must be inactive after End")
	}
	if pool.Len() != 4 {
		t.Errorf("Expected full pool after End, got %d", pool.Len())
	}

	again, err := e.End()
	if err != nil || len(again) != 0 {
		t.Errorf("Second End must be a no-op, got %v, %v", again, err)
	}
	if result := e.Tick(10, false); len(result.Released) != 0 {
		t.Errorf("Tick after End must do nothing")
	}
}
