package simulation

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/tevino/abool"

	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/config"
	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/core"
	"github.com/picogrid/tactical-retreat/cmd/tactical-retreat/reporting"
	"github.com/picogrid/tactical-retreat/pkg/logger"
	"github.com/picogrid/tactical-retreat/pkg/simulation"
)

// RegistryName is the name the simulation registers under
const RegistryName = "tactical-retreat"

// TacticalRetreatSimulation plays out a pursuit: the friendly fleet flees,
// the enemy's slow reinforcements are held back by the delay schedule and
// trickle into the battle as their delays elapse.
type TacticalRetreatSimulation struct {
	config   *config.ScenarioConfig
	settings core.SettingsSource
	out      io.Writer

	paused   abool.AtomicBool
	stopping abool.AtomicBool
	stopChan chan struct{}

	mu      sync.Mutex
	report  *reporting.AfterAction
	metrics *reporting.Metrics
}

// NewTacticalRetreatSimulation creates a new instance of the simulation
func NewTacticalRetreatSimulation() simulation.Simulation {
	return &TacticalRetreatSimulation{
		out:      os.Stdout,
		stopChan: make(chan struct{}),
	}
}

// Name returns the simulation name
func (s *TacticalRetreatSimulation) Name() string {
	return "Tactical Retreat"
}

// Description returns the simulation description
func (s *TacticalRetreatSimulation) Description() string {
	return "Pursuit engagement where slow enemy reinforcements arrive in delayed waves"
}

// Configure loads the scenario named by the config_path parameter and
// applies the remaining parameters on top of it.
func (s *TacticalRetreatSimulation) Configure(params map[string]interface{}) error {
	path, _ := params["config_path"].(string)

	cfg, err := config.LoadConfigWithOverrides(path, params)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	s.config = cfg
	s.settings = config.NewViperSettings(viper.GetViper(), cfg.Retreat)
	return nil
}

// SetOutput redirects console output, including the report
func (s *TacticalRetreatSimulation) SetOutput(w io.Writer) {
	s.out = w
}

// Pause stops simulated time until Resume is called
func (s *TacticalRetreatSimulation) Pause() { s.paused.Set() }

// Resume continues simulated time
func (s *TacticalRetreatSimulation) Resume() { s.paused.UnSet() }

// Paused reports whether simulated time is stopped
func (s *TacticalRetreatSimulation) Paused() bool { return s.paused.IsSet() }

// Report returns the after action report of the current or last run
func (s *TacticalRetreatSimulation) Report() *reporting.AfterAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

// Metrics returns the metrics of the current or last run
func (s *TacticalRetreatSimulation) Metrics() *reporting.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Run executes the simulation
func (s *TacticalRetreatSimulation) Run(ctx context.Context) error {
	if s.config == nil {
		return fmt.Errorf("simulation is not configured")
	}
	cfg := s.config

	seed := cfg.Fleets.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	engagementID, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return fmt.Errorf("failed to create engagement id: %w", err)
	}

	log := logger.NewWithConfig(logger.Config{
		Level:    logger.ParseLevel(cfg.Logging.ConsoleLevel),
		Writer:   s.out,
		NoColor:  color.NoColor,
		ShowTime: cfg.Logging.ShowTime,
	}).WithField("engagement", engagementID.String()[:8])

	fleeing, err := BuildFleet(cfg.Fleets.Fleeing, "Fleeing", rng)
	if err != nil {
		return err
	}
	pursuing, err := BuildFleet(cfg.Fleets.Pursuing, "Pursuer", rng)
	if err != nil {
		return err
	}

	rule, err := core.CompileActivityRule(cfg.Engagement.ActivityRule)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log.Infof("%s %d fleeing ships, %d pursuers in reserve (seed %d)", logger.IconShip, len(fleeing), len(pursuing), seed)

	reserve := core.NewReserve(pursuing...)
	ec := core.EngagementContext{
		Pursuit:   cfg.Engagement.Pursuit,
		Simulated: cfg.Engagement.Simulated,
		Fleeing:   fleeing,
		Boost: core.BoostState{
			Fleeing:  cfg.Engagement.FleeingBoost,
			Pursuing: cfg.Engagement.PursuingBoost,
		},
	}
	eng := core.StartEngagement(ec, s.settings, reserve, core.FieldSpeedSource{Rule: rule}, log)

	metrics := reporting.NewMetrics()
	report := reporting.NewAfterAction(engagementID.String())
	report.RecordEngagement(eng)
	if eng.Active() {
		metrics.ObserveBuild(eng.Schedule().Entries())
	}
	if cfg.Logging.StatusBoard {
		eng.SetStatusSink(reporting.NewStatusBoard(s.out, color.NoColor))
	}

	s.mu.Lock()
	s.report = report
	s.metrics = metrics
	s.mu.Unlock()

	// The engagement must end however Run returns, or held units are lost
	defer s.finish(eng, report, metrics, log)

	return s.loop(ctx, eng, reserve, report, metrics, log)
}

func (s *TacticalRetreatSimulation) loop(ctx context.Context, eng *core.Engagement, reserve *core.Reserve,
	report *reporting.AfterAction, metrics *reporting.Metrics, log logger.Logger) error {
	cfg := s.config

	ticker := time.NewTicker(cfg.Simulation.TickInterval)
	defer ticker.Stop()

	var (
		simSeconds float64
		pauseLeft  int
		pauseDone  bool
		lingered   int
	)
	step := cfg.Simulation.StepSeconds
	maxSeconds := cfg.Simulation.MaxDuration.Seconds()

	for {
		select {
		case <-ctx.Done():
			log.Warn("Simulation cancelled")
			return ctx.Err()
		case <-s.stopChan:
			log.Info("Simulation stopped by user")
			return nil
		case <-ticker.C:
		}

		if !pauseDone && cfg.Engagement.PauseFor > 0 && cfg.Engagement.PauseAt > 0 && simSeconds >= cfg.Engagement.PauseAt {
			pauseDone = true
			pauseLeft = cfg.Engagement.PauseFor
			s.Pause()
			log.Infof("%s Paused at %.0fs for %d ticks", logger.IconPause, simSeconds, pauseLeft)
		}

		paused := s.Paused()
		if !paused {
			simSeconds += step
		}

		result := eng.Tick(step, paused)

		var deployed []*core.Unit
		if !paused {
			deployed = reserve.Deploy(cfg.Engagement.DeployPerTick)
			for _, u := range deployed {
				log.Debugf("%s %s joins the battle", logger.IconArrow, u.Label())
			}
		}

		metrics.ObserveTick(simSeconds, paused, result, len(deployed))
		report.RecordTick(simSeconds, paused, result.Released, deployed)

		if paused && pauseLeft > 0 {
			pauseLeft--
			if pauseLeft == 0 {
				s.Resume()
				log.Infof("%s Resumed", logger.IconRefresh)
			}
		}

		if simSeconds >= maxSeconds {
			log.Infof("%s Reached max duration of %v", logger.IconTime, cfg.Simulation.MaxDuration)
			return nil
		}

		if !eng.Active() || eng.Schedule().Drained() {
			lingered++
			if lingered > cfg.Simulation.LingerTicks {
				log.Info("No reinforcements left to delay")
				return nil
			}
		}
	}
}

func (s *TacticalRetreatSimulation) finish(eng *core.Engagement, report *reporting.AfterAction, metrics *reporting.Metrics, log logger.Logger) {
	// A run that ends inside the pause window must not leave the next one paused
	s.Resume()

	returned, err := eng.End()
	if err != nil {
		log.Warnf("Some held units could not be returned: %v", err)
	}
	if len(returned) > 0 {
		log.Infof("Returned %d held units to reserves", len(returned))
	}
	metrics.ObserveTeardown(returned, err)
	report.RecordTeardown(returned)

	_, _ = fmt.Fprintln(s.out)
	report.Fprint(s.out)

	if path := s.config.Logging.MetricsPath; path != "" {
		if err := metrics.Dump(path); err != nil {
			log.Errorf("Failed to write metrics: %v", err)
			return
		}
		log.Infof("Metrics written to %s", path)
	}
}

// Stop gracefully shuts down the simulation. Calling it more than once is safe.
func (s *TacticalRetreatSimulation) Stop() error {
	if s.stopping.SetToIf(false, true) {
		close(s.stopChan)
	}
	return nil
}

// init registers the simulation
func init() {
	err := simulation.DefaultRegistry.Register(RegistryName, NewTacticalRetreatSimulation)
	if err != nil {
		logger.Errorf("Failed to register simulation: %v", err)
		return
	}
}
