package core

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestActivityRule(t *testing.T) {
	tests := []struct {
		name string
		rule string
		unit *Unit
		want bool
	}{
		{"default active", "", &Unit{ID: "a"}, true},
		{"default mothballed", "", &Unit{ID: "a", Mothballed: true}, false},
		{"readiness", "CombatReadiness > 0.5", &Unit{ID: "a", CombatReadiness: 0.4}, false},
		{"hull name", `Hull != "capital"`, &Unit{ID: "a", Hull: HullCapital}, false},
		{"burn", "MaxBurn >= 9", &Unit{ID: "a", MaxBurn: 9}, true},
		{"nil unit", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := CompileActivityRule(tt.rule)
			if err != nil {
				t.Fatalf("CompileActivityRule(%q) failed: %v", tt.rule, err)
			}
			if got := rule.Active(tt.unit); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestActivityRuleCompileErrors(t *testing.T) {
	invalid := []string{
		"MaxBurn + 1",    // not a bool
		"Unknown == 3",   // unknown field
		"!Mothballed &&", // syntax
	}
	for _, src := range invalid {
		if _, err := CompileActivityRule(src); err == nil {
			t.Errorf("Expected compile error for %q", src)
		}
	}
}

func TestActivityRuleString(t *testing.T) {
	rule, err := CompileActivityRule("   ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rule.String() != DefaultActivityRule {
		t.Errorf("Expected default rule, got %q", rule.String())
	}
}

func TestHullSizeYAML(t *testing.T) {
	var u Unit
	data := []byte("id: u1\nname: Onslaught\nhull: Capital\nmax_burn: 7\n")
	if err := yaml.Unmarshal(data, &u); err != nil {
		t.Fatalf("Failed to unmarshal unit: %v", err)
	}
	if u.Hull != HullCapital || u.MaxBurn != 7 || u.Label() != "Onslaught" {
		t.Errorf("Unexpected unit %+v", u)
	}

	out, err := yaml.Marshal(&u)
	if err != nil {
		t.Fatalf("Failed to marshal unit: %v", err)
	}
	var back Unit
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Failed to unmarshal marshaled unit: %v", err)
	}
	if back != u {
		t.Errorf("Round trip changed unit: %+v != %+v", back, u)
	}

	if err := yaml.Unmarshal([]byte("hull: dreadnought\n"), &u); err == nil {
		t.Errorf("Expected error for unknown hull size")
	}
}
