// Command surface is the pilot-side entry point: input -> movement
// contributions -> transport (SPEC_FULL.md F.4). It dials the robot's
// listener, mirrors the robot's replicated world, and drives the same
// single-threaded cooperative scheduler spec.md §5 describes; the robot
// entity itself is always ForeignOwned here (spec.md §3.1), so every
// control-loop stage that touches it is the same no-op-unless-local code
// the robot binary runs, shared from control/.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rovmesh/components"
	"rovmesh/config"
	"rovmesh/control"
	"rovmesh/ecs"
	"rovmesh/geom"
	"rovmesh/httpapi"
	"rovmesh/logging"
	"rovmesh/motor"
	"rovmesh/scheduler"
	syncengine "rovmesh/sync"
	"rovmesh/terminal"
	"rovmesh/token"
	"rovmesh/transport"
)

func main() {
	var httpAddr, terminalAddr string

	root := &cobra.Command{
		Use:   "surface <host:port>",
		Short: "rovmesh surface node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], httpAddr, terminalAddr)
		},
	}
	root.Flags().StringVar(&httpAddr, "http", ":8090", "address for the HTTP/websocket telemetry surface")
	root.Flags().StringVar(&terminalAddr, "terminal", ":8091", "address for the interactive debug console")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(robotAddr, httpAddr, terminalAddr string) error {
	if err := config.LoadEnv(".env"); err != nil {
		return err
	}

	registry := token.New()
	world := ecs.NewWorld(registry)
	if err := components.RegisterAll(registry, world); err != nil {
		return fmt.Errorf("surface: register components: %w", err)
	}
	registry.Freeze()

	surfaceKey := world.Spawn()
	if err := ecs.Insert(world, surfaceKey, components.Surface{}); err != nil {
		return err
	}

	// The surface builds the same thruster geometry and performance table
	// the robot solves with, purely to scale gamepad axes against its axis
	// maximums and to give RunMovement/RunStatus a rig to no-op against on
	// the foreign robot mirror — it never drives a PWM chip itself.
	cfg := config.DefaultRobotConfig()
	perfFile, err := os.Open(cfg.MotorDataPath)
	if err != nil {
		return fmt.Errorf("surface: open motor data: %w", err)
	}
	defer perfFile.Close()
	perf, err := motor.LoadPerformanceCSV(perfFile)
	if err != nil {
		return fmt.Errorf("surface: load motor data: %w", err)
	}
	com := geom.Vec3{X: cfg.CenterOfMassX, Y: cfg.CenterOfMassY, Z: cfg.CenterOfMassZ}
	rig := control.NewX3DRig(com, perf, cfg.MotorAmperageBudget, cfg.JerkLimit)

	tracker := ecs.NewTracker(world)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tport, err := transport.Start(ctx)
	if err != nil {
		return fmt.Errorf("surface: start transport: %w", err)
	}
	if !tport.Connect(robotAddr) {
		return fmt.Errorf("surface: transport not accepting commands")
	}
	engine := syncengine.NewEngine(world, tracker, tport)

	gamepad := newStubGamepad()
	mapper := control.NewInputMapper()

	api := httpapi.New(httpAddr)
	console := terminal.New(terminalAddr, api)

	sched := scheduler.New(world)
	sched.AddPreUpdate(drainHTTPCommands(world, api))
	sched.AddPreUpdate(drainTransportEvents(tport, engine))

	sched.AddUpdate(func(dt float64) error { return control.RunArmRequests(world, tracker) })
	sched.AddUpdate(readGamepad(world, gamepad, mapper, rig))
	sched.AddUpdate(func(dt float64) error { return control.RunMovement(world, rig, dt) })
	sched.AddUpdate(func(dt float64) error { return control.RunStatus(world, rig) })

	sched.AddPostUpdate(func(dt float64) error {
		engine.Broadcast()
		engine.Heartbeat(time.Now())
		api.Publish(httpapi.BuildSnapshot(world, sched.OverrunP99()))
		return nil
	})

	g, gctx := scheduler.SideGroup(ctx)
	g.Go(func() error { return api.Start(gctx) })
	g.Go(func() error { return console.Start(gctx) })
	g.Go(func() error { sched.Run(gctx); return nil })

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-gctx.Done():
		logging.Warn("surface: side thread failed, shutting down")
	case <-sigs:
		logging.DebugPrint("surface: received termination signal, shutting down")
	}

	cancel()
	tport.Shutdown()

	return g.Wait()
}
