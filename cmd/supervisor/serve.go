// cmd/supervisor/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tamzrod/actuator-supervisor/internal/config"
	"github.com/tamzrod/actuator-supervisor/internal/httpapi"
	"github.com/tamzrod/actuator-supervisor/internal/logging"
	"github.com/tamzrod/actuator-supervisor/internal/metrics"
	"github.com/tamzrod/actuator-supervisor/internal/motion"
	"github.com/tamzrod/actuator-supervisor/internal/roboteq"
	"github.com/tamzrod/actuator-supervisor/internal/safety"
	"github.com/tamzrod/actuator-supervisor/internal/serial"
	"github.com/tamzrod/actuator-supervisor/internal/status"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to the controller and serve the HTTP control surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.HTTP.Listen = listen
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logging.New(logging.ParseLevel(cfg.Log.Level)))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "HTTP listen address (overrides http.listen)")
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// --------------------
	// Metrics
	// --------------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// --------------------
	// Serial session + device
	// --------------------

	sess, dev, err := roboteq.Build(cfg.Device, serial.SysfsEnumerator{},
		serial.WithLogger(log.With("component", "serial")),
		serial.WithStatusHook(func(s serial.Status) { m.SetLinkStatus(s.String()) }),
		serial.WithQueryHook(m.ObserveQuery),
	)
	if err != nil {
		return fmt.Errorf("serial build failed: %w", err)
	}

	// --------------------
	// Motion engine
	// --------------------

	table, err := motion.Build(cfg.Motion)
	if err != nil {
		return fmt.Errorf("motion table invalid: %w", err)
	}

	latch := &status.Latch{}
	engine, err := motion.NewEngine(table, dev, latch,
		motion.Config{
			SafeDistance: cfg.Motion.SafeDistance,
			Nudge:        cfg.Motion.Nudge,
		},
		motion.WithLogger(log.With("component", "motion")),
		motion.WithOutcomeHook(func(name, outcome string) {
			if _, ok := table.Transition(name); !ok {
				name = "unknown"
			}
			m.ObserveTransition(name, outcome)
			m.SetActive(latch.Active())
		}),
		motion.WithNudgeHook(m.ObserveNudge),
	)
	if err != nil {
		return fmt.Errorf("motion engine build failed: %w", err)
	}

	// --------------------
	// Voltage watchdog
	// --------------------

	wd, err := safety.New(
		safety.Config{
			MinimumVoltage: cfg.Safety.MinimumVoltage,
			Interval:       time.Duration(cfg.Safety.PollIntervalMs) * time.Millisecond,
		},
		dev, engine, latch,
		safety.WithLogger(log.With("component", "safety")),
		safety.WithVoltsHook(m.SetVolts),
		safety.WithTripHook(m.ObserveShutdown),
	)
	if err != nil {
		return fmt.Errorf("watchdog build failed: %w", err)
	}

	log.Info("supervisor starting",
		"manufacturer", cfg.Device.Manufacturer,
		"baud", cfg.Device.BaudRate,
		"driver", cfg.Device.Driver,
		"top_m", cfg.Limits.Top,
		"bottom_m", cfg.Limits.Bottom,
		"max_speed", cfg.Limits.Speed,
		"max_accel", cfg.Limits.Acceleration,
		"max_decel", cfg.Limits.Deceleration,
		"transitions", len(table.Names()),
	)

	// --------------------
	// Background loops
	// --------------------

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sess.Run(runCtx)
	}()
	go func() {
		defer wg.Done()
		wd.Run(runCtx)
	}()

	// --------------------
	// HTTP control surface
	// --------------------

	srv := &http.Server{
		Addr: cfg.HTTP.Listen,
		Handler: httpapi.NewHandler(&httpapi.Server{
			Link:    sess,
			Device:  dev,
			Engine:  engine,
			Latch:   latch,
			Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			Log:     log.With("component", "http"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("http listening", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown requested")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
		_ = srv.Close()
	}

	cancel()
	wg.Wait()
	log.Info("supervisor stopped")
	return runErr
}
