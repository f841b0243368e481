package core

import (
	"errors"
	"testing"

	"github.com/picogrid/tactical-retreat/pkg/logger"
)

func TestDelayFor(t *testing.T) {
	tests := []struct {
		name      string
		unit, ref int
		perPoint  float64
		max       float64
		want      float64
	}{
		{"equal speed", 10, 10, 30, 180, 0},
		{"faster unit", 12, 10, 30, 180, 0},
		{"one point slower", 9, 10, 30, 180, 30},
		{"three points slower", 7, 10, 30, 180, 90},
		{"capped", 1, 10, 30, 180, 180},
		{"zero cap", 5, 10, 30, 0, 0},
		{"fractional per point", 8, 10, 12.5, 180, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DelayFor(tt.unit, tt.ref, tt.perPoint, tt.max); got != tt.want {
				t.Errorf("DelayFor(%d, %d, %v, %v) = %v, want %v", tt.unit, tt.ref, tt.perPoint, tt.max, got, tt.want)
			}
		})
	}
}

func TestDelayForProperties(t *testing.T) {
	const perPoint, maxDelay = 30.0, 180.0

	for ref := 1; ref <= 20; ref++ {
		prev := -1.0
		// Walk from fast to slow so the gap grows
		for unit := 20; unit >= 1; unit-- {
			got := DelayFor(unit, ref, perPoint, maxDelay)

			if unit >= ref && got != 0 {
				t.Fatalf("unit %d >= ref %d must not be delayed, got %v", unit, ref, got)
			}
			if got > maxDelay {
				t.Fatalf("delay %v exceeds cap %v", got, maxDelay)
			}
			if got < prev {
				t.Fatalf("delay decreased from %v to %v as gap grew (unit %d, ref %d)", prev, got, unit, ref)
			}
			prev = got
		}
	}
}

type erroringSource struct{}

func (erroringSource) MaxBurn(*Unit) (int, error) { return 0, errors.New("stats unavailable") }
func (erroringSource) IsActive(*Unit) bool        { return true }

func TestUnitSpeedFallback(t *testing.T) {
	metric := NewSpeedMetric(FieldSpeedSource{}, logger.Discard())

	tests := []struct {
		name string
		unit *Unit
		want int
	}{
		{"valid burn", &Unit{ID: "a", Hull: HullCapital, MaxBurn: 11}, 11},
		{"lower bound", &Unit{ID: "a", MaxBurn: 1}, 1},
		{"upper bound", &Unit{ID: "a", MaxBurn: 20}, 20},
		{"unknown frigate", &Unit{ID: "a", Hull: HullFrigate}, 10},
		{"unknown destroyer", &Unit{ID: "a", Hull: HullDestroyer}, 9},
		{"unknown cruiser", &Unit{ID: "a", Hull: HullCruiser}, 8},
		{"unknown capital", &Unit{ID: "a", Hull: HullCapital}, 7},
		{"unknown hull", &Unit{ID: "a"}, DefaultBurn},
		{"too fast", &Unit{ID: "a", Hull: HullFrigate, MaxBurn: 21}, 10},
		{"negative", &Unit{ID: "a", Hull: HullCapital, MaxBurn: -3}, 7},
		{"nil unit", nil, DefaultBurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metric.UnitSpeed(tt.unit); got != tt.want {
				t.Errorf("UnitSpeed() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUnitSpeedSourceError(t *testing.T) {
	metric := NewSpeedMetric(erroringSource{}, logger.Discard())

	if got := metric.UnitSpeed(&Unit{ID: "a", Hull: HullDestroyer, MaxBurn: 12}); got != 9 {
		t.Errorf("Expected destroyer estimate 9 when source fails, got %d", got)
	}
}

func TestFleetMinSpeed(t *testing.T) {
	metric := NewSpeedMetric(FieldSpeedSource{}, logger.Discard())

	tests := []struct {
		name  string
		units []*Unit
		want  int
	}{
		{
			name: "slowest active unit",
			units: []*Unit{
				{ID: "a", MaxBurn: 10},
				{ID: "b", MaxBurn: 8},
				{ID: "c", MaxBurn: 9},
			},
			want: 8,
		},
		{
			name: "mothballed units ignored",
			units: []*Unit{
				{ID: "a", MaxBurn: 10},
				{ID: "b", MaxBurn: 5, Mothballed: true},
			},
			want: 10,
		},
		{
			name: "fallback counts",
			units: []*Unit{
				{ID: "a", MaxBurn: 10},
				{ID: "b", Hull: HullCapital},
			},
			want: 7,
		},
		{
			name:  "empty fleet",
			units: nil,
			want:  DefaultBurn,
		},
		{
			name: "all mothballed",
			units: []*Unit{
				{ID: "a", MaxBurn: 3, Mothballed: true},
			},
			want: DefaultBurn,
		},
		{
			name:  "nil entries skipped",
			units: []*Unit{nil, {ID: "a", MaxBurn: 12}},
			want:  12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := metric.FleetMinSpeed(tt.units); got != tt.want {
				t.Errorf("FleetMinSpeed() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFleetMinSpeedWithRule(t *testing.T) {
	rule, err := CompileActivityRule("!Mothballed && CombatReadiness >= 0.2")
	if err != nil {
		t.Fatalf("Failed to compile rule: %v", err)
	}
	metric := NewSpeedMetric(FieldSpeedSource{Rule: rule}, logger.Discard())

	units := []*Unit{
		{ID: "a", MaxBurn: 9, CombatReadiness: 0.7},
		{ID: "b", MaxBurn: 6, CombatReadiness: 0.1},
	}
	if got := metric.FleetMinSpeed(units); got != 9 {
		t.Errorf("Expected low readiness ship to be ignored, got min burn %d", got)
	}
}

func TestEstimateBurn(t *testing.T) {
	want := map[HullSize]int{
		HullFrigate:   10,
		HullDestroyer: 9,
		HullCruiser:   8,
		HullCapital:   7,
		HullUnknown:   8,
	}
	for hull, burn := range want {
		if got := EstimateBurn(hull); got != burn {
			t.Errorf("EstimateBurn(%s) = %d, want %d", hull, got, burn)
		}
	}
}
