package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"periph.io/x/conn/v3/physic"

	"github.com/micro-nova/imx585-go/internal/config"
	"github.com/micro-nova/imx585-go/internal/hardware"
	"github.com/micro-nova/imx585-go/internal/logging"
	"github.com/micro-nova/imx585-go/internal/models"
	"github.com/micro-nova/imx585-go/internal/sensor"
)

func newLogger(cfg config.LoggingConfig, level *slog.LevelVar) *slog.Logger {
	lv, _ := config.ParseLevel(cfg.Level)
	level.Set(lv)
	return slog.New(logging.New(os.Stderr, logging.Options{
		Level:   level,
		Format:  cfg.Format,
		Journal: cfg.Journal,
	}))
}

// openBus opens the register bus named by cfg.
func openBus(cfg config.BusConfig) (hardware.Bus, error) {
	switch cfg.Kind {
	case config.BusI2C:
		return hardware.OpenI2C(cfg.Device, cfg.Address, cfg.OpsPerSec)
	case config.BusPeriph:
		return hardware.OpenPeriph(cfg.Device, cfg.Address)
	case config.BusSerial:
		return hardware.OpenSerial(cfg.Device, cfg.Baud)
	case config.BusMock:
		return hardware.NewMock(), nil
	}
	return nil, fmt.Errorf("unknown bus %q", cfg.Kind)
}

// openPower returns the GPIO power sequencer, or NopPower when no pins
// are configured.
func openPower(cfg config.PowerConfig) (hardware.Power, error) {
	if cfg.Clock == "" && cfg.Reset == "" && len(cfg.Rails) == 0 {
		return hardware.NopPower{}, nil
	}
	return hardware.NewGPIOPower(hardware.GPIOPins{
		Clock: cfg.Clock,
		Rails: cfg.Rails,
		Reset: cfg.Reset,
	})
}

// attach opens the bus and power hooks and binds a sensor device to them.
// wrap, when set, decorates the bus before the device sees it.
func attach(cfg *config.Config, wrap func(hardware.Bus) hardware.Bus, log *slog.Logger) (*sensor.Device, models.Info, error) {
	sc, err := cfg.SensorConfig()
	if err != nil {
		return nil, models.Info{}, err
	}
	bus, err := openBus(cfg.Bus)
	if err != nil {
		return nil, models.Info{}, fmt.Errorf("open bus: %w", err)
	}
	power, err := openPower(cfg.Power)
	if err != nil {
		bus.Close()
		return nil, models.Info{}, fmt.Errorf("open power: %w", err)
	}
	info := sensorInfo(cfg, sc, bus.IsReal())
	if wrap != nil {
		bus = wrap(bus)
	}
	dev, err := sensor.Attach(bus, power, sc, sensor.WithLogger(log))
	if err != nil {
		bus.Close()
		return nil, models.Info{}, fmt.Errorf("attach: %w", err)
	}
	return dev, info, nil
}

func sensorInfo(cfg *config.Config, sc sensor.Config, isReal bool) models.Info {
	lf, _ := sensor.LinkFrequency(sc.Lanes)
	return models.Info{
		Version:       version,
		Variant:       string(sc.Variant),
		Lanes:         sc.Lanes,
		ClockHz:       int64(sc.ClockFrequency / physic.Hertz),
		LinkFrequency: lf,
		Bus:           cfg.Bus.Kind + ":" + cfg.Bus.Device,
		MockBus:       !isReal,
	}
}

// listenPort extracts the TCP port from a listen address such as ":8585".
func listenPort(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(p)
}

// parseRegister accepts decimal, 0x-prefixed hex, or octal.
func parseRegister(s string) (hardware.Register, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid register address %q", s)
	}
	return hardware.Register(v), nil
}
