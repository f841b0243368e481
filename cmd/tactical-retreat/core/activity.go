package core

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// DefaultActivityRule excludes mothballed ships from fleet speed
const DefaultActivityRule = "!Mothballed"

// activityEnv is what an activity rule expression can see
type activityEnv struct {
	Name            string
	Hull            string
	MaxBurn         int
	Mothballed      bool
	CombatReadiness float64
}

// ActivityRule decides which units count towards a fleet's speed, e.g.
// `!Mothballed && CombatReadiness > 0.1`.
type ActivityRule struct {
	source  string
	program *vm.Program
}

// CompileActivityRule compiles a boolean rule expression. An empty source
// compiles DefaultActivityRule.
func CompileActivityRule(src string) (*ActivityRule, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		src = DefaultActivityRule
	}

	program, err := expr.Compile(src, expr.Env(activityEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile activity rule %q: %w", src, err)
	}

	return &ActivityRule{source: src, program: program}, nil
}

// String returns the rule source
func (r *ActivityRule) String() string {
	return r.source
}

// Evaluate runs the rule against u
func (r *ActivityRule) Evaluate(u *Unit) (bool, error) {
	if u == nil {
		return false, nil
	}

	out, err := expr.Run(r.program, activityEnv{
		Name:            u.Name,
		Hull:            u.Hull.String(),
		MaxBurn:         u.MaxBurn,
		Mothballed:      u.Mothballed,
		CombatReadiness: u.CombatReadiness,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate activity rule for %s: %w", u.Label(), err)
	}

	active, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("activity rule returned %T, not bool", out)
	}
	return active, nil
}

// Active is Evaluate with failures counted as active, so a broken rule
// never makes a ship disappear from its fleet.
func (r *ActivityRule) Active(u *Unit) bool {
	active, err := r.Evaluate(u)
	if err != nil {
		return u != nil
	}
	return active
}
