package core

import (
	"fmt"
	"strings"
)

// HullSize is the size class of a ship
type HullSize int

const (
	HullUnknown HullSize = iota
	HullFrigate
	HullDestroyer
	HullCruiser
	HullCapital
)

var hullNames = map[HullSize]string{
	HullUnknown:   "unknown",
	HullFrigate:   "frigate",
	HullDestroyer: "destroyer",
	HullCruiser:   "cruiser",
	HullCapital:   "capital",
}

// String returns the lower case hull size name
func (h HullSize) String() string {
	if name, ok := hullNames[h]; ok {
		return name
	}
	return hullNames[HullUnknown]
}

// ParseHullSize parses a hull size name. Unknown names yield HullUnknown
// together with an error.
func ParseHullSize(s string) (HullSize, error) {
	for size, name := range hullNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return size, nil
		}
	}
	return HullUnknown, fmt.Errorf("unknown hull size %q", s)
}

// MarshalYAML encodes the hull size by name
func (h HullSize) MarshalYAML() (interface{}, error) {
	return h.String(), nil
}

// UnmarshalYAML decodes a hull size name
func (h *HullSize) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	size, err := ParseHullSize(s)
	if err != nil {
		return err
	}
	*h = size
	return nil
}

// Unit is a single ship. Units are owned by the host; the scheduler only
// borrows them from the reserve pool and hands them back.
type Unit struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Hull            HullSize `yaml:"hull"`
	MaxBurn         int      `yaml:"max_burn"` // 0 when unknown
	Mothballed      bool     `yaml:"mothballed,omitempty"`
	CombatReadiness float64  `yaml:"combat_readiness"`
}

// Label returns a human readable identifier for logs
func (u *Unit) Label() string {
	if u == nil {
		return "<nil>"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
