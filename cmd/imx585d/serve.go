package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"github.com/micro-nova/imx585-go/internal/api"
	"github.com/micro-nova/imx585-go/internal/config"
	"github.com/micro-nova/imx585-go/internal/controller"
	"github.com/micro-nova/imx585-go/internal/events"
	"github.com/micro-nova/imx585-go/internal/hardware"
	"github.com/micro-nova/imx585-go/internal/metrics"
	"github.com/micro-nova/imx585-go/internal/zeroconf"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(configPath *string) *cobra.Command {
	var mock bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sensor control API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if mock {
				cfg.Bus.Kind = config.BusMock
				cfg.Power = config.PowerConfig{}
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return serve(ctx, *configPath, cfg)
		},
	}
	cmd.Flags().BoolVar(&mock, "mock", false, "use an in-memory register bus (no sensor required)")
	return cmd
}

func serve(ctx context.Context, configPath string, cfg *config.Config) error {
	level := new(slog.LevelVar)
	log := newLogger(cfg.Logging, level)
	slog.SetDefault(log)

	m := metrics.New()
	dev, info, err := attach(cfg, func(b hardware.Bus) hardware.Bus { return m.InstrumentBus(b) }, log)
	if err != nil {
		return err
	}
	log.Info("sensor attached", "variant", info.Variant, "lanes", info.Lanes, "bus", info.Bus, "mock", info.MockBus)

	if err := os.MkdirAll(cfg.State.Dir, 0o755); err != nil {
		dev.Close(ctx)
		return fmt.Errorf("state dir: %w", err)
	}
	store := config.NewJSONStore(cfg.State.Dir)
	bus := events.NewBus()
	ctrl, err := controller.New(dev, info, store, bus, m)
	if err != nil {
		dev.Close(ctx)
		return fmt.Errorf("controller: %w", err)
	}

	// Only the log level is applied live; the rest needs a restart.
	watcher := config.NewWatcher(configPath, log)
	watcher.OnReload(func(next *config.Config) {
		if lv, err := config.ParseLevel(next.Logging.Level); err == nil && lv != level.Level() {
			level.Set(lv)
			log.Info("log level changed", "level", lv)
		}
	})
	if err := watcher.Start(ctx); err != nil {
		log.Warn("config watch disabled", "path", configPath, "err", err)
	} else {
		defer watcher.Stop()
	}

	if cfg.Server.Zeroconf {
		if port, err := listenPort(cfg.Server.Addr); err != nil {
			log.Warn("zeroconf disabled", "addr", cfg.Server.Addr, "err", err)
		} else {
			zc := zeroconf.New(cfg.Server.Name, port, info)
			go func() {
				if err := zc.Start(ctx); err != nil {
					log.Warn("zeroconf failed", "err", err)
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(ctrl, bus, m.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE
		IdleTimeout:  120 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Server.Addr, "config", configPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Warn("sd_notify failed", "err", err)
	} else if ok {
		log.Debug("notified systemd")
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errc:
		log.Error("server error", "err", runErr)
	}
	daemon.SdNotify(false, daemon.SdNotifyStopping)

	shutCtx, shutCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer shutCancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Warn("server shutdown error", "err", err)
	}
	// Stops streaming, powers the sensor down and flushes settings.
	if err := ctrl.Close(shutCtx); err != nil {
		log.Warn("controller close error", "err", err)
	}
	log.Info("shutdown complete")
	return runErr
}
