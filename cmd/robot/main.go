// Command robot is the ROV-side entry point: sensors -> control -> motors
// -> pwm (SPEC_FULL.md F.4). It owns the replicated World, accepts the
// surface's connection, and drives the single-threaded cooperative
// scheduler spec.md §5 describes; every hardware/socket thread besides the
// scheduler's own runs as a side thread under the same errgroup, grounded
// on the teacher's main.go context/WaitGroup shutdown shape.
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
	"rovmesh/ids"
	"rovmesh/logging"
	"rovmesh/motor"
	"rovmesh/pwmout"
	"rovmesh/scheduler"
	syncengine "rovmesh/sync"
	"rovmesh/terminal"
	"rovmesh/token"
	"rovmesh/transport"
)

func main() {
	var configPath, httpAddr, terminalAddr string

	root := &cobra.Command{
		Use:   "robot",
		Short: "rovmesh robot node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, httpAddr, terminalAddr)
		},
	}
	root.Flags().StringVar(&configPath, "config", "robot_config.toml", "path to the robot's TOML configuration")
	root.Flags().StringVar(&httpAddr, "http", ":8080", "address for the HTTP/websocket telemetry surface")
	root.Flags().StringVar(&terminalAddr, "terminal", ":8081", "address for the interactive debug console")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, httpAddr, terminalAddr string) error {
	if err := config.LoadEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.LoadRobotConfig(configPath)
	if err != nil {
		return fmt.Errorf("robot: %w", err)
	}

	registry := token.New()
	world := ecs.NewWorld(registry)
	if err := components.RegisterAll(registry, world); err != nil {
		return fmt.Errorf("robot: register components: %w", err)
	}
	registry.Freeze()

	robotID, err := ids.NewNetId()
	if err != nil {
		return fmt.Errorf("robot: %w", err)
	}
	ecs.SetResource(world, components.RobotId{Id: robotID})

	robotKey := world.Spawn()
	if err := ecs.Insert(world, robotKey, components.RobotMarker{}); err != nil {
		return err
	}
	if err := ecs.Insert(world, robotKey, components.ArmedComponent{State: components.Disarmed}); err != nil {
		return err
	}

	perfFile, err := os.Open(cfg.MotorDataPath)
	if err != nil {
		return fmt.Errorf("robot: open motor data: %w", err)
	}
	defer perfFile.Close()
	perf, err := motor.LoadPerformanceCSV(perfFile)
	if err != nil {
		return fmt.Errorf("robot: load motor data: %w", err)
	}

	com := geom.Vec3{X: cfg.CenterOfMassX, Y: cfg.CenterOfMassY, Z: cfg.CenterOfMassZ}
	rig := control.NewX3DRig(com, perf, cfg.MotorAmperageBudget, cfg.JerkLimit)
	if err := control.RegisterMotors(world, rig); err != nil {
		return fmt.Errorf("robot: register motors: %w", err)
	}
	if err := assignPwmChannels(world, rig); err != nil {
		return fmt.Errorf("robot: assign pwm channels: %w", err)
	}

	tracker := ecs.NewTracker(world)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tport, err := transport.Start(ctx)
	if err != nil {
		return fmt.Errorf("robot: start transport: %w", err)
	}
	if !tport.Bind(fmt.Sprintf(":%d", config.WirePort)) {
		return fmt.Errorf("robot: transport not accepting commands")
	}
	engine := syncengine.NewEngine(world, tracker, tport)

	pwmDriver := newStubPwmDriver()
	pwmCtl := pwmout.NewController(pwmDriver)

	sensors := newStubSensors()
	madgwick := control.NewMadgwick(config.MadgwickBeta, config.MadgwickSampleRate)
	depthCtl := control.NewDepthController()
	levelCtl := control.NewLevelController()

	api := httpapi.New(httpAddr)
	console := terminal.New(terminalAddr, api)

	sched := scheduler.New(world)
	sched.AddPreUpdate(drainHTTPCommands(world, api))
	sched.AddPreUpdate(drainTransportEvents(tport, engine))

	sched.AddUpdate(readSensors(world, robotKey, sensors, madgwick))
	sched.AddUpdate(func(dt float64) error { return control.RunArmRequests(world, tracker) })
	sched.AddUpdate(func(dt float64) error { return control.RunDisarmOnNoPeer(world) })
	sched.AddUpdate(func(dt float64) error { return control.RunMovement(world, rig, dt) })
	sched.AddUpdate(func(dt float64) error { return depthCtl.Run(world, dt) })
	sched.AddUpdate(func(dt float64) error { return levelCtl.Run(world, dt) })
	sched.AddUpdate(func(dt float64) error { return control.RunServos(world, config.DefaultPwmMicros) })
	sched.AddUpdate(func(dt float64) error { return control.RunStatus(world, rig) })
	sched.AddUpdate(pwmBridge(world, rig, pwmCtl))

	sched.AddPostUpdate(func(dt float64) error {
		engine.Broadcast()
		engine.Heartbeat(time.Now())
		api.Publish(httpapi.BuildSnapshot(world, sched.OverrunP99()))
		return nil
	})

	g, gctx := scheduler.SideGroup(ctx)
	g.Go(func() error { pwmCtl.Run(gctx); return nil })
	g.Go(func() error { return api.Start(gctx) })
	g.Go(func() error { return console.Start(gctx) })
	g.Go(func() error { sched.Run(gctx); return nil })

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-gctx.Done():
		logging.Warn("robot: side thread failed, shutting down")
	case <-sigs:
		logging.DebugPrint("robot: received termination signal, shutting down")
	}

	cancel()
	pwmCtl.Send(pwmout.Command{Kind: pwmout.CmdShutdown})
	tport.Shutdown()

	return g.Wait()
}
