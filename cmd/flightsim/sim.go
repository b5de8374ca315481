// cmd/flightsim/sim.go
package main

import (
	"context"
	"time"

	"github.com/opd-ai/go-gravitywell/pkg/config"
	"github.com/opd-ai/go-gravitywell/pkg/engine"
	"github.com/opd-ai/go-gravitywell/pkg/event"
	"github.com/opd-ai/go-gravitywell/pkg/health"
	"github.com/opd-ai/go-gravitywell/pkg/logging"
	"github.com/opd-ai/go-gravitywell/pkg/scenario"
)

// Simulation runs a world at a fixed step, feeding the possessed entity
// from a scenario script.
type Simulation struct {
	World  *engine.World
	Script *scenario.Script
	Logger *logging.Logger

	// Health runs at every status report when set.
	Health *health.HealthChecker

	// Reloads and ReloadErrors are drained between ticks. Either may be nil.
	Reloads      <-chan *config.TuningConfig
	ReloadErrors <-chan error
}

// Summary describes a finished run
type Summary struct {
	Ticks    uint64
	Elapsed  float64
	Landings int
	TakeOffs int
	Reloads  int

	// Unhealthy counts status reports with a failing health check.
	Unhealthy int
}

// Run advances the world ticks times. With realTime each tick waits for
// the wall clock. Cancelling ctx ends the run early without an error.
func (s *Simulation) Run(ctx context.Context, ticks int, realTime bool) (Summary, error) {
	w := s.World
	dt := w.Config.Simulation.DeltaTime
	var summary Summary

	landed := w.EventBus.Subscribe(event.ShipLanded, func(event.Event) { summary.Landings++ })
	defer landed.Cancel()
	tookOff := w.EventBus.Subscribe(event.ShipTookOff, func(event.Event) { summary.TakeOffs++ })
	defer tookOff.Cancel()

	var pace <-chan time.Time
	if realTime {
		ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
		defer ticker.Stop()
		pace = ticker.C
	}

	s.Logger.Info(ctx, "Simulation started",
		"ticks", ticks,
		"dt", dt,
		"scenario", s.Script.Name(),
		"entities", w.Count(),
	)
	w.EventBus.Publish(event.NewSimulationEvent(event.SimulationStarted, w, w.CurrentTick, w.ElapsedTime))

	var runErr error
	for i := 0; i < ticks; i++ {
		if ctx.Err() != nil {
			s.Logger.Warn(ctx, "Simulation interrupted", "tick", w.CurrentTick)
			break
		}

		summary.Reloads += s.drainReloads(ctx)
		dt = w.Config.Simulation.DeltaTime

		if err := s.drive(ctx); err != nil {
			runErr = err
			break
		}
		w.Tick(dt)

		if interval := w.Config.Simulation.ReportInterval; interval > 0 && w.CurrentTick%uint64(interval) == 0 {
			s.report(ctx)
			if !s.checkHealth(ctx) {
				summary.Unhealthy++
			}
		}

		if pace != nil {
			select {
			case <-pace:
			case <-ctx.Done():
			}
		}
	}

	summary.Ticks = w.CurrentTick
	summary.Elapsed = w.ElapsedTime
	w.EventBus.Publish(event.NewSimulationEvent(event.SimulationEnded, w, w.CurrentTick, w.ElapsedTime))
	return summary, runErr
}

// drive runs the script for the possessed entity and delivers its inputs.
func (s *Simulation) drive(ctx context.Context) error {
	w := s.World
	id, ok := w.Possessed()
	if !ok {
		return nil
	}

	st, err := w.State(id)
	if err != nil {
		return err
	}

	cmd, err := s.Script.Step(ctx, scenario.Observation{
		Tick:      w.CurrentTick,
		Time:      w.ElapsedTime,
		DeltaTime: w.FrameDelta(),
		Speed:     st.Speed,
		Altitude:  st.Altitude,
		Landed:    st.Landed,
	})
	if err != nil {
		return err
	}

	for _, in := range cmd.Inputs() {
		if err := w.Input(id, in); err != nil {
			return logging.WrapError(err, "deliver %s input", in.Kind)
		}
	}
	return nil
}

// drainReloads applies every pending tuning reload and reports how many
// were applied.
func (s *Simulation) drainReloads(ctx context.Context) int {
	applied := 0
	for {
		select {
		case cfg, ok := <-s.Reloads:
			if !ok {
				s.Reloads = nil
				continue
			}
			if err := s.World.ApplyTuning(cfg); err != nil {
				s.Logger.Warn(ctx, "Rejected tuning reload", "error", err.Error())
				continue
			}
			applied++
		case err, ok := <-s.ReloadErrors:
			if !ok {
				s.ReloadErrors = nil
				continue
			}
			s.Logger.Warn(ctx, "Tuning reload failed", "error", err.Error())
		default:
			return applied
		}
	}
}

func (s *Simulation) report(ctx context.Context) {
	w := s.World
	id, ok := w.Possessed()
	if !ok {
		s.Logger.Info(ctx, "Status", "tick", w.CurrentTick, "entities", w.Count())
		return
	}

	st, err := w.State(id)
	if err != nil {
		return
	}
	s.Logger.Info(ctx, "Status",
		"tick", w.CurrentTick,
		"entity", st.Name,
		"position", st.Position,
		"speed", st.Speed,
		"altitude", st.Altitude,
		"rotation", st.Rotation,
		"landed", st.Landed,
	)
}

// checkHealth runs the health checks and logs failures. It reports
// whether the world is healthy.
func (s *Simulation) checkHealth(ctx context.Context) bool {
	if s.Health == nil {
		return true
	}

	status := s.Health.CheckHealth(ctx)
	if status.Healthy() {
		return true
	}
	for _, name := range status.Failing() {
		s.Logger.Warn(ctx, "Health check failed",
			"check", name,
			"message", status.Checks[name].Message,
			"tick", s.World.CurrentTick,
		)
	}
	return false
}

// newHealthChecker registers the bounds, progress and memory checks for w.
func newHealthChecker(w *engine.World, maxMemoryMB int64) *health.HealthChecker {
	hc := health.NewHealthChecker()
	hc.AddCheck(health.NewBoundsHealthCheck(w.Config.WorldSize, func() []health.BodySample {
		var samples []health.BodySample
		for _, e := range w.Entities() {
			st, err := w.State(e.GetID())
			if err != nil {
				continue
			}
			samples = append(samples, health.BodySample{
				Name:     st.Name,
				Position: st.Position,
				Velocity: st.Velocity,
			})
		}
		return samples
	}))
	hc.AddCheck(health.NewProgressHealthCheck(func() uint64 { return w.CurrentTick }))
	if maxMemoryMB > 0 {
		hc.AddCheck(health.NewMemoryHealthCheck(maxMemoryMB, nil))
	}
	return hc
}
