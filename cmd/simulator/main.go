package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/spectrum-sim/core"
	"github.com/signalsfoundry/spectrum-sim/internal/command"
	"github.com/signalsfoundry/spectrum-sim/internal/config"
	"github.com/signalsfoundry/spectrum-sim/internal/logging"
	"github.com/signalsfoundry/spectrum-sim/internal/observability"
	"github.com/signalsfoundry/spectrum-sim/model"
	"github.com/signalsfoundry/spectrum-sim/timectrl"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file (defaults apply when empty)")
	scenarioPath := flag.String("scenario", "", "path to JSON scenario (overrides config)")
	duration := flag.Duration("duration", 0, "total simulation duration (0 = run until interrupted)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "init tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewSimCollector(nil)
	if err != nil {
		log.Error(ctx, "init metrics", logging.String("error", err.Error()))
		os.Exit(1)
	}

	radioCfg, err := cfg.RadioConfig()
	if err != nil {
		log.Error(ctx, "radio config", logging.String("error", err.Error()))
		os.Exit(1)
	}

	tickDur := time.Duration(cfg.Sim.TickMs) * time.Millisecond
	mode := timectrl.RealTime
	if cfg.Sim.Accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(time.Now().UTC(), tickDur, mode)

	world := core.NewWorld()
	hub := command.NewHub(log)
	engine := core.NewSimulationEngine(world, radioCfg, tc, cfg.Sim.Seed, hub)

	path := cfg.ScenarioPath
	if *scenarioPath != "" {
		path = *scenarioPath
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Error(ctx, "open scenario", logging.String("path", path), logging.String("error", err.Error()))
			os.Exit(1)
		}
		scenario, err := core.LoadScenario(world, f)
		f.Close()
		if err != nil {
			log.Error(ctx, "load scenario", logging.String("error", err.Error()))
			os.Exit(1)
		}
		log.Info(ctx, "scenario loaded",
			logging.String("path", path),
			logging.Int("entities", len(scenario.EntityIDs)),
			logging.Int("transmitters", scenario.Transmitters),
			logging.Int("receivers", scenario.Receivers),
			logging.Int("jammers", scenario.Jammers),
			logging.Int("drones", scenario.Drones))
	} else {
		buildDemoScenario(world)
		log.Info(ctx, "no scenario configured; built demo scenario")
	}

	server := command.NewServer(engine, hub, log, collector.Handler())
	engine.RegisterTickListener(server.BroadcastTick)

	go func() {
		log.Info(ctx, "command server listening", logging.String("addr", cfg.Server.Listen))
		if err := http.ListenAndServe(cfg.Server.Listen, server.Handler()); err != nil {
			log.Error(ctx, "command server", logging.String("error", err.Error()))
		}
	}()

	tracer := otel.Tracer("spectrum-sim/simulator")
	dt := tickDur.Seconds()
	var lastJammerStats core.JammerStats

	tc.AddListener(func(time.Time) {
		_, span := tracer.Start(ctx, "sim.tick")
		start := time.Now()

		engine.Tick(dt)

		collector.TickDuration.Observe(time.Since(start).Seconds())

		stats := engine.Propagator.Stats()
		collector.PairComputations.Add(float64(stats.PairComputations))
		collector.CacheHits.Add(float64(stats.CacheHits))
		collector.SignalsPerceived.Add(float64(stats.SignalsPerceived))
		collector.JammedReceivers.Set(float64(stats.JammedReceivers))

		js := engine.Jammers.Stats()
		collector.JammerActivations.Add(float64(js.Activations - lastJammerStats.Activations))
		collector.JammerDeactivations.Add(float64(js.Deactivations - lastJammerStats.Deactivations))
		collector.RejectedCommands.Add(float64(js.RejectedCommands - lastJammerStats.RejectedCommands))
		lastJammerStats = js

		activeTx, confused, disabled := countStates(engine)
		collector.ActiveTransmitters.Set(float64(activeTx))
		collector.ConfusedEntities.Set(float64(confused))
		collector.DisabledEntities.Set(float64(disabled))

		span.SetAttributes(
			attribute.Int("tick", engine.TickCount()),
			attribute.Int("pair_computations", stats.PairComputations),
			attribute.Int("jammed_receivers", stats.JammedReceivers),
		)
		span.End()
	})

	log.Info(ctx, "starting simulation",
		logging.Any("duration", duration.String()),
		logging.Any("tick", tickDur.String()),
		logging.Int("mode", int(mode)))
	done := tc.Start(*duration)
	<-done
	log.Info(ctx, "simulation complete", logging.Int("ticks", engine.TickCount()))
}

func countStates(engine *core.SimulationEngine) (activeTx, confused, disabled int) {
	engine.WithLock(func() {
		world := engine.World
		for _, id := range world.EntitiesWith(model.KindTransmitter) {
			if world.Transmitter(id).Active {
				activeTx++
			}
		}
		for _, id := range world.EntitiesWith(model.KindAI) {
			switch world.AI(id).State {
			case model.StateConfused:
				confused++
			case model.StateDisabled:
				disabled++
			}
		}
	})
	return activeTx, confused, disabled
}

// buildDemoScenario populates a small battle: two patrol drones on ISM 2400,
// a fixed ground transmitter, and a spot jammer awaiting activation.
func buildDemoScenario(world *core.World) {
	world.CreateEntity("ground-tx")
	world.SetTransform("ground-tx", &model.Transform{X: 0, Y: 0, Z: 10, Scale: 1})
	world.SetTransmitter("ground-tx", &model.Transmitter{
		Active:    true,
		PowerDBm:  -20,
		Frequency: model.FreqISM2400,
		Antenna:   model.AntennaOmni,
	})

	for i, start := range []model.Waypoint{{X: -400, Y: -400}, {X: 400, Y: 400}} {
		id := model.EntityID(fmt.Sprintf("drone-%d", i+1))
		world.CreateEntity(id)
		world.SetTransform(id, &model.Transform{X: start.X, Y: start.Y, Z: 50, Scale: 1})
		world.SetReceiver(id, &model.Receiver{
			Frequency:      model.FreqISM2400,
			SensitivityDBm: -90,
		})
		world.SetAI(id, &model.AI{State: model.StatePatrol})
		world.SetDrone(id, &model.Drone{
			Speed: 800,
			Waypoints: []model.Waypoint{
				{X: 0, Y: 0}, {X: -start.X, Y: -start.Y},
			},
			Base:                     &model.Waypoint{X: start.X, Y: start.Y},
			ReturnToBaseWhenComplete: true,
			RemainingTimeSec:         1800,
		})
	}

	world.CreateEntity("jammer-1")
	world.SetTransform("jammer-1", &model.Transform{X: 200, Y: 0, Z: 5, Scale: 1})
	world.SetTransmitter("jammer-1", &model.Transmitter{
		Frequency: model.FreqISM2400,
		Antenna:   model.AntennaOmni,
	})
	world.SetJammer("jammer-1", &model.Jammer{
		Type:            model.JammerSpot,
		TargetFrequency: model.FreqISM2400,
		PowerLevelDBm:   30,
	})
}
