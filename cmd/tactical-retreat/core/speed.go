package core

import (
	"fmt"
	"math"

	"github.com/picogrid/tactical-retreat/pkg/logger"
)

const (
	// DefaultBurn is used when neither the burn level nor the hull size of
	// a unit can be determined, and for fleets without active units.
	DefaultBurn = 8

	MinValidBurn = 1
	MaxValidBurn = 20
)

// hullBurnEstimates are rough per-class burn levels
var hullBurnEstimates = map[HullSize]int{
	HullFrigate:   10,
	HullDestroyer: 9,
	HullCruiser:   8,
	HullCapital:   7,
}

// SpeedSource supplies the authoritative burn level of a unit and decides
// whether a unit counts towards its fleet's speed.
type SpeedSource interface {
	MaxBurn(u *Unit) (int, error)
	IsActive(u *Unit) bool
}

// FieldSpeedSource reads Unit.MaxBurn. Activity is decided by Rule when set,
// otherwise mothballed units are inactive.
type FieldSpeedSource struct {
	Rule *ActivityRule
}

// MaxBurn returns the unit's recorded burn level
func (s FieldSpeedSource) MaxBurn(u *Unit) (int, error) {
	if u == nil {
		return 0, fmt.Errorf("nil unit: %w", ErrSpeedUnreadable)
	}
	if u.MaxBurn == 0 {
		return 0, fmt.Errorf("%s has no burn level: %w", u.Label(), ErrSpeedUnreadable)
	}
	return u.MaxBurn, nil
}

// IsActive reports whether the unit affects fleet speed
func (s FieldSpeedSource) IsActive(u *Unit) bool {
	if u == nil {
		return false
	}
	if s.Rule != nil {
		return s.Rule.Active(u)
	}
	return !u.Mothballed
}

// SpeedMetric turns units into comparable burn levels. It holds no state
// beyond its collaborators.
type SpeedMetric struct {
	source SpeedSource
	log    logger.Logger
}

// NewSpeedMetric creates a speed metric backed by source
func NewSpeedMetric(source SpeedSource, log logger.Logger) *SpeedMetric {
	if source == nil {
		source = FieldSpeedSource{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &SpeedMetric{
		source: source,
		log:    log.WithPrefix("speed"),
	}
}

// UnitSpeed returns the effective burn level of u. It never fails: when the
// source cannot provide a value in [1,20] the hull size estimate is used.
func (m *SpeedMetric) UnitSpeed(u *Unit) int {
	if u == nil {
		return DefaultBurn
	}

	burn, err := m.source.MaxBurn(u)
	if err == nil && burn >= MinValidBurn && burn <= MaxValidBurn {
		return burn
	}
	if err == nil {
		err = fmt.Errorf("burn %d out of range: %w", burn, ErrSpeedUnreadable)
	}

	estimate := EstimateBurn(u.Hull)
	m.log.Warnf("Could not read burn for %s (%v), using %s estimate %d", u.Label(), err, u.Hull, estimate)
	return estimate
}

// FleetMinSpeed returns the burn level of the slowest active unit. A fleet
// without active units moves at DefaultBurn.
func (m *SpeedMetric) FleetMinSpeed(units []*Unit) int {
	minBurn := math.MaxInt
	for _, u := range units {
		if !m.source.IsActive(u) {
			continue
		}
		if burn := m.UnitSpeed(u); burn < minBurn {
			minBurn = burn
		}
	}

	if minBurn == math.MaxInt {
		m.log.Warn("No active units in fleet, using default burn")
		return DefaultBurn
	}
	return minBurn
}

// EstimateBurn returns the typical burn level for a hull size
func EstimateBurn(h HullSize) int {
	if burn, ok := hullBurnEstimates[h]; ok {
		return burn
	}
	return DefaultBurn
}

// DelayFor returns how many seconds a unit moving at unitSpeed is held back
// when chasing a fleet moving at referenceSpeed. Units at least as fast get
// no delay; slower ones get perPointSeconds per burn level, capped at
// maxSeconds.
func DelayFor(unitSpeed, referenceSpeed int, perPointSeconds, maxSeconds float64) float64 {
	if unitSpeed >= referenceSpeed {
		return 0
	}
	delay := float64(referenceSpeed-unitSpeed) * perPointSeconds
	return math.Min(delay, maxSeconds)
}
