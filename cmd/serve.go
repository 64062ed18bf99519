package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	_ "motion_security/docs"
	"motion_security/internal/bulb"
	"motion_security/internal/camera"
	"motion_security/internal/config"
	"motion_security/internal/dashboard"
	"motion_security/internal/handlers"
	"motion_security/internal/logger"
	"motion_security/internal/metrics"
	"motion_security/internal/mqtt"
	"motion_security/internal/recognizer"
	"motion_security/internal/repository"
	"motion_security/internal/repository/db"
	"motion_security/internal/sensors"
	"motion_security/internal/server"
	"motion_security/internal/service"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the security service and its HTTP API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context(), configPath)
	},
}

// sensorBoard is either the serial board or the disabled stand-in.
type sensorBoard interface {
	service.LightSensor
	OnMotion(fn func())
	Monitor(ctx context.Context) error
	Close() error
}

func runServe(parent context.Context, cfgPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	database, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Errorw("failed to init sqlite", "err", err)
		return err
	}
	defer func() {
		if cerr := database.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()
	repos := repository.NewRepository(database)

	// background work runs until a signal arrives
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	bg, cancelBG := context.WithCancel(context.Background())
	defer cancelBG()

	// MQTT transport shared by the bulb and the dashboard
	topics := mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}
	var (
		bulbPub bulb.Publisher
		dashTr  dashboard.Transport
	)
	mq, err := mqtt.New(cfg.MQTT, log.Named("mqtt"))
	switch {
	case errors.Is(err, mqtt.ErrNoBroker):
		log.Warnw("mqtt_disabled", "reason", "no broker configured")
	case err != nil:
		return err
	default:
		defer mq.Close()
		bulbPub, dashTr = mq, mq
		topics = mq.Topics()
		if cerr := mq.EnsureConnected(); cerr != nil {
			log.Warnw("mqtt_initial_connect_failed", "err", cerr)
		}
	}
	light := bulb.New(bulbPub, topics.BulbCommand(cfg.Bulb.DeviceID), byte(cfg.MQTT.QoS), log.Named("bulb"))

	board, indicator := openSensors(cfg.Sensors, log)
	defer func() { _ = board.Close() }()

	enc := recognizer.NewHTTPEncoder(cfg.Recognizer)
	registry := recognizer.NewDirSource(cfg.Recognizer.RegisteredDir, enc, log.Named("registry"))
	matcher := recognizer.NewMatcher(enc, cfg.Security.FaceThreshold, cfg.Security.MinDistanceGap)

	cache := service.NewRecognitionCache(registry, log.Named("cache"))
	if _, err := cache.Load(ctx); err != nil {
		log.Warnw("identity_preload_failed", "err", err)
	}

	persisted, err := repos.StateRepo.Load(ctx)
	if err != nil {
		log.Warnw("dashboard_state_load_failed", "err", err)
	}
	initialMode := service.ModeAuto
	if m, perr := service.ParseMode(persisted.Mode); perr == nil {
		initialMode = m
	}
	gate := service.NewModeGate(initialMode)

	hub := dashboard.NewHub(dashTr, topics, byte(cfg.MQTT.QoS), repos.StateRepo, cfg.Dashboard.SyncInterval, log.Named("dashboard"))
	hub.Restore(persisted)
	hub.SetMode(gate.CurrentMode().String())
	gate.OnChange(func(_, next service.OperationMode) { hub.SetMode(next.String()) })
	if err := hub.SubscribeModeCommands(func(p string) { gate.SetMode(service.ModeFromSignal(p)) }); err != nil {
		log.Warnw("dashboard_subscribe_failed", "err", err)
	}

	observer := newObserver(ctx, cfg.InfluxDB, log)
	if closer, ok := observer.(*metrics.Influx); ok {
		defer closer.Close()
	}

	orch := service.NewOrchestrator(cfg.Security, service.Deps{
		Light:      board,
		Actuator:   light,
		Indicator:  indicator,
		Camera:     newCamera(cfg.Camera),
		Recognizer: matcher,
		Cache:      cache,
		Mode:       gate,
		Dashboard:  hub,
		Events:     repos.EventRepo,
		Observer:   observer,
		Log:        log.Named("orchestrator"),
	})
	board.OnMotion(func() {
		if err := orch.Trigger(); err != nil {
			log.Debugw("motion_after_stop", "err", err)
		}
	})

	services := service.NewService(repos, service.Core{Orchestrator: orch, Cache: cache, Live: hub}, cfg.Auth, log.Named("service"))
	api := handlers.NewHandler(services, log.Named("http"))

	go hub.Run(bg)
	go func() {
		if err := board.Monitor(bg); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorw("sensor_monitor_stopped", "err", err)
		}
	}()

	srv := &server.Server{}
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.Run(cfg.Port, api.InitRoutes()) }()
	log.Infow("motion_security_started", "port", cfg.Port, "mode", gate.CurrentMode().String(), "identities", cache.Current().Len())

	var runErr error
	select {
	case <-ctx.Done():
		log.Infow("shutting down...")
	case runErr = <-srvErr:
		if runErr != nil {
			log.Errorw("error starting server", "err", runErr)
		}
	}

	// the light goes off before anything else is torn down
	orch.Stop()
	orch.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	cancelBG()
	hub.Sync(shutdownCtx)
	return runErr
}

func openSensors(cfg config.SensorsConfig, log *logger.Logger) (sensorBoard, service.Indicator) {
	port, err := sensors.OpenPort(cfg)
	if err != nil {
		log.Warnw("sensors_disabled", "err", err)
		return sensors.Disabled{}, sensors.Disabled{}
	}
	b := sensors.NewBoard(port, log.Named("sensors"))
	return b, b.Indicator()
}

func newCamera(cfg config.CameraConfig) service.StreamSource {
	if cfg.SnapshotURL == "" && cfg.Dir != "" {
		return camera.NewDirSource(cfg.Dir, cfg.FrameInterval)
	}
	return camera.NewSnapshotSource(cfg)
}

func newObserver(ctx context.Context, cfg config.InfluxDBConfig, log *logger.Logger) service.SessionObserver {
	in, err := metrics.Connect(ctx, cfg, log.Named("metrics"))
	if err != nil {
		if !errors.Is(err, metrics.ErrDisabled) {
			log.Warnw("influx_unavailable", "err", err)
		}
		return metrics.Nop{}
	}
	return in
}
