package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/picogrid/tactical-retreat/pkg/logger"
)

// ScheduleState is the lifecycle state of a DelaySchedule. A drained
// schedule is an active one with nothing held.
type ScheduleState int

const (
	StateUnbuilt ScheduleState = iota
	StateActive
)

// String returns the state name
func (s ScheduleState) String() string {
	switch s {
	case StateUnbuilt:
		return "unbuilt"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DelayedEntry is a unit held out of the reserve together with its delay.
// Entries are fixed at build time.
type DelayedEntry struct {
	Unit         *Unit
	Speed        int
	DelaySeconds float64
}

// PendingEntry is a held unit and the seconds left until its release
type PendingEntry struct {
	UnitID           string
	RemainingSeconds float64
}

// DelaySchedule holds slow pursuing units out of their reserve and hands
// them back once their delay has elapsed. One schedule serves exactly one
// engagement and is not safe for concurrent use.
type DelaySchedule struct {
	pool   ReservePool
	metric *SpeedMetric
	log    logger.Logger

	state   ScheduleState
	elapsed float64

	// order keeps build order so releases and listings are deterministic
	order    []string
	held     map[string]*DelayedEntry
	released map[string]struct{}
}

// NewDelaySchedule creates an unbuilt schedule working on pool
func NewDelaySchedule(pool ReservePool, metric *SpeedMetric, log logger.Logger) *DelaySchedule {
	if log == nil {
		log = logger.Discard()
	}
	if metric == nil {
		metric = NewSpeedMetric(nil, log)
	}
	return &DelaySchedule{
		pool:     pool,
		metric:   metric,
		log:      log.WithPrefix("schedule"),
		held:     make(map[string]*DelayedEntry),
		released: make(map[string]struct{}),
	}
}

// Build claims every unit in snapshot that is slower than referenceSpeed.
// It may only run once.
func (s *DelaySchedule) Build(snapshot []*Unit, referenceSpeed int, perPointSeconds, maxSeconds float64) error {
	if s.state != StateUnbuilt {
		return fmt.Errorf("build called on %s schedule: %w", s.state, ErrInvalidStateTransition)
	}
	if s.pool == nil {
		return fmt.Errorf("build without a reserve pool: %w", ErrInvalidStateTransition)
	}
	s.state = StateActive

	s.log.Infof("Reserve has %d units, reference burn %d", len(snapshot), referenceSpeed)

	for _, u := range snapshot {
		if u == nil {
			continue
		}
		if _, dup := s.held[u.ID]; dup {
			continue
		}

		speed := s.metric.UnitSpeed(u)
		delay := DelayFor(speed, referenceSpeed, perPointSeconds, maxSeconds)
		if delay <= 0 {
			s.log.Debugf("%s (burn %d) - no delay, fast enough to catch up", u.Label(), speed)
			continue
		}

		if err := s.pool.Remove(u.ID); err != nil {
			s.log.Warnf("Could not claim %s, leaving it alone: %v", u.Label(), err)
			continue
		}

		s.held[u.ID] = &DelayedEntry{Unit: u, Speed: speed, DelaySeconds: delay}
		s.order = append(s.order, u.ID)
		s.log.Infof("%s (burn %d) removed from reserves, will deploy after %.0fs", u.Label(), speed, delay)
	}

	s.log.Infof("Scheduled %d of %d units for delayed deployment", len(s.held), len(snapshot))
	return nil
}

// Advance moves the clock forward by deltaSeconds and releases every held
// unit whose delay has now elapsed. A zero delta still checks for due units.
// Release failures do not stop the pass; they are returned together as a
// non-fatal error next to the released ids.
func (s *DelaySchedule) Advance(deltaSeconds float64) ([]string, error) {
	if s.state != StateActive {
		return nil, fmt.Errorf("advance called on %s schedule: %w", s.state, ErrInvalidStateTransition)
	}
	if deltaSeconds < 0 || math.IsNaN(deltaSeconds) {
		return nil, fmt.Errorf("advance by %v: %w", deltaSeconds, ErrNegativeDelta)
	}

	s.elapsed += deltaSeconds
	if len(s.held) == 0 {
		return nil, nil
	}

	var (
		releasedNow []string
		errs        *multierror.Error
	)
	for _, id := range s.order {
		entry, ok := s.held[id]
		if !ok {
			continue
		}
		if _, done := s.released[id]; done {
			delete(s.held, id)
			continue
		}
		if entry.DelaySeconds > s.elapsed {
			continue
		}

		s.log.Infof("[%.1fs] Releasing %s to reserves (delay elapsed)", s.elapsed, entry.Unit.Label())
		if err := s.release(entry); err != nil {
			errs = multierror.Append(errs, err)
		}
		releasedNow = append(releasedNow, id)
	}

	s.compact()
	return releasedNow, errs.ErrorOrNil()
}

// Teardown returns every unit still held to the reserve regardless of its
// delay. It must run when an engagement ends early; calling it again is a
// no-op.
func (s *DelaySchedule) Teardown() ([]string, error) {
	if len(s.held) == 0 {
		return nil, nil
	}

	var (
		returned []string
		errs     *multierror.Error
	)
	for _, id := range s.order {
		entry, ok := s.held[id]
		if !ok {
			continue
		}
		if err := s.release(entry); err != nil {
			errs = multierror.Append(errs, err)
		}
		returned = append(returned, id)
	}

	s.compact()
	s.log.Infof("Teardown returned %d held units to reserves", len(returned))
	return returned, errs.ErrorOrNil()
}

// release moves entry from held to released and hands the unit back. The
// bookkeeping happens first so a failing pool can never cause a second
// release attempt.
func (s *DelaySchedule) release(entry *DelayedEntry) error {
	id := entry.Unit.ID
	delete(s.held, id)
	s.released[id] = struct{}{}

	if err := s.pool.Add(entry.Unit); err != nil {
		s.log.Warnf("Reserve rejected %s: %v", entry.Unit.Label(), err)
		return fmt.Errorf("failed to release %s: %w: %w", entry.Unit.Label(), ErrReleaseTargetMissing, err)
	}
	return nil
}

func (s *DelaySchedule) compact() {
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.held[id]; ok {
			kept = append(kept, id)
		}
	}
	s.order = kept
}

// PendingEntries lists held units with their remaining time, soonest first
func (s *DelaySchedule) PendingEntries() []PendingEntry {
	pending := make([]PendingEntry, 0, len(s.held))
	for _, id := range s.order {
		entry, ok := s.held[id]
		if !ok {
			continue
		}
		pending = append(pending, PendingEntry{
			UnitID:           id,
			RemainingSeconds: math.Max(0, entry.DelaySeconds-s.elapsed),
		})
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].RemainingSeconds < pending[j].RemainingSeconds
	})
	return pending
}

// Entries returns copies of the held entries in build order
func (s *DelaySchedule) Entries() []DelayedEntry {
	entries := make([]DelayedEntry, 0, len(s.held))
	for _, id := range s.order {
		if entry, ok := s.held[id]; ok {
			entries = append(entries, *entry)
		}
	}
	return entries
}

// State returns the lifecycle state
func (s *DelaySchedule) State() ScheduleState { return s.state }

// Elapsed returns the seconds advanced so far
func (s *DelaySchedule) Elapsed() float64 { return s.elapsed }

// HeldCount returns how many units are still held
func (s *DelaySchedule) HeldCount() int { return len(s.held) }

// Drained reports whether a built schedule has nothing left to release
func (s *DelaySchedule) Drained() bool {
	return s.state == StateActive && len(s.held) == 0
}

// IsReleased reports whether id was claimed and has since been released
func (s *DelaySchedule) IsReleased(id string) bool {
	_, ok := s.released[id]
	return ok
}

// IsHeld reports whether id is currently held
func (s *DelaySchedule) IsHeld(id string) bool {
	_, ok := s.held[id]
	return ok
}
