package simulation

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/config"
	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/core"
)

var shipNames = map[core.HullSize][]string{
	core.HullFrigate:   {"Wolf", "Lasher", "Tempest", "Hyperion", "Vigilance", "Brawler"},
	core.HullDestroyer: {"Hammerhead", "Enforcer", "Sunder", "Medusa", "Drover"},
	core.HullCruiser:   {"Eagle", "Dominator", "Falcon", "Champion", "Aurora"},
	core.HullCapital:   {"Onslaught", "Conquest", "Paragon", "Atlas", "Odyssey"},
}

// hullForBurn picks the hull class that usually flies at burn
func hullForBurn(burn int) core.HullSize {
	switch {
	case burn >= 10:
		return core.HullFrigate
	case burn == 9:
		return core.HullDestroyer
	case burn == 8:
		return core.HullCruiser
	default:
		return core.HullCapital
	}
}

// BuildFleet returns the fleet described by cfg. Explicit ships are copied;
// otherwise ships are generated from rng, so a fixed seed always yields the
// same fleet including its ids.
func BuildFleet(cfg config.FleetConfig, side string, rng *rand.Rand) ([]*core.Unit, error) {
	if len(cfg.Ships) > 0 {
		units := make([]*core.Unit, len(cfg.Ships))
		for i := range cfg.Ships {
			ship := cfg.Ships[i]
			units[i] = &ship
		}
		return units, nil
	}

	g := cfg.Generate
	units := make([]*core.Unit, 0, g.Count)
	for i := 0; i < g.Count; i++ {
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("failed to generate id for %s ship %d: %w", side, i+1, err)
		}

		burn := g.MinBurn + rng.Intn(g.MaxBurn-g.MinBurn+1)
		hull := hullForBurn(burn)
		names := shipNames[hull]

		unit := &core.Unit{
			ID:              id.String(),
			Name:            fmt.Sprintf("%s %s-%02d", side, names[rng.Intn(len(names))], i+1),
			Hull:            hull,
			MaxBurn:         burn,
			CombatReadiness: 0.3 + 0.7*rng.Float64(),
		}
		if rng.Float64() < g.UnknownBurnRate {
			unit.MaxBurn = 0
		}
		if rng.Float64() < g.MothballedRate {
			unit.Mothballed = true
		}

		units = append(units, unit)
	}
	return units, nil
}
