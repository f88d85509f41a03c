package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"periph.io/x/conn/v3/physic"

	"github.com/micro-nova/imx585-go/internal/sensor"
)

// Config is the daemon configuration file.
type Config struct {
	Bus     BusConfig     `toml:"bus"`
	Sensor  SensorConfig  `toml:"sensor"`
	Gain    GainConfig    `toml:"gain"`
	Power   PowerConfig   `toml:"power"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	State   StateConfig   `toml:"state"`
}

// Bus kinds.
const (
	BusI2C    = "i2c"    // i2c-dev character device
	BusPeriph = "periph" // periph.io registry name
	BusSerial = "serial" // UART register bridge
	BusMock   = "mock"   // in-memory, no hardware
)

type BusConfig struct {
	Kind      string `toml:"kind"`
	Device    string `toml:"device"`
	Address   uint16 `toml:"address"`
	Baud      int    `toml:"baud"`
	OpsPerSec int    `toml:"ops_per_sec"`
}

type SensorConfig struct {
	Variant         string  `toml:"variant"`
	Clock           string  `toml:"clock"`
	Lanes           int     `toml:"lanes"`
	LinkFrequencies []int64 `toml:"link_frequencies"`
}

// GainConfig overrides the conversion gain switch point. Unset fields keep
// the sensor default.
type GainConfig struct {
	Threshold *int64 `toml:"threshold"`
	Below     *uint8 `toml:"below"`
	AtOrAbove *uint8 `toml:"at_or_above"`
}

func (g GainConfig) set() bool {
	return g.Threshold != nil || g.Below != nil || g.AtOrAbove != nil
}

// PowerConfig names the GPIO lines that sequence sensor power. With no
// lines configured the sensor is assumed to be powered externally.
type PowerConfig struct {
	Clock string   `toml:"clock"`
	Rails []string `toml:"rails"`
	Reset string   `toml:"reset"`
}

type ServerConfig struct {
	Addr     string `toml:"addr"`
	Zeroconf bool   `toml:"zeroconf"`
	Name     string `toml:"name"`
}

type LoggingConfig struct {
	Level   string `toml:"level"`
	Format  string `toml:"format"`  // "text" | "json"
	Journal bool   `toml:"journal"` // log to the systemd journal when reachable
}

type StateConfig struct {
	Dir string `toml:"dir"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Kind:      BusI2C,
			Device:    "/dev/i2c-10",
			Address:   0x1a,
			Baud:      115200,
			OpsPerSec: 2000,
		},
		Sensor: SensorConfig{
			Variant:         string(sensor.VariantColor),
			Clock:           "24MHz",
			Lanes:           4,
			LinkFrequencies: []int64{sensor.LinkFreq4Lane},
		},
		Server: ServerConfig{
			Addr: ":8585",
			Name: "imx585",
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		State:   StateConfig{Dir: "/var/lib/imx585"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields that cannot be caught at attach time.
func (c *Config) Validate() error {
	switch c.Bus.Kind {
	case BusI2C, BusPeriph, BusSerial, BusMock:
	default:
		return fmt.Errorf("bus.kind: unknown bus %q", c.Bus.Kind)
	}
	if c.Bus.Kind != BusMock && c.Bus.Device == "" {
		return errors.New("bus.device: required")
	}
	if _, err := c.Sensor.ClockFrequency(); err != nil {
		return fmt.Errorf("sensor.clock: %w", err)
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}
	return nil
}

// ClockFrequency parses the clock setting, e.g. "24MHz" or "74.25MHz".
func (s SensorConfig) ClockFrequency() (physic.Frequency, error) {
	var f physic.Frequency
	if err := f.Set(s.Clock); err != nil {
		return 0, err
	}
	return f, nil
}

// SensorConfig converts the file settings to an attach configuration.
func (c *Config) SensorConfig() (sensor.Config, error) {
	clk, err := c.Sensor.ClockFrequency()
	if err != nil {
		return sensor.Config{}, err
	}
	sc := sensor.Config{
		Variant:         sensor.Variant(c.Sensor.Variant),
		ClockFrequency:  clk,
		Lanes:           c.Sensor.Lanes,
		LinkFrequencies: c.Sensor.LinkFrequencies,
	}
	if c.Gain.set() {
		gm := sensor.DefaultGainMapping()
		if c.Gain.Threshold != nil {
			gm.Threshold = *c.Gain.Threshold
		}
		if c.Gain.Below != nil {
			gm.Below = *c.Gain.Below
		}
		if c.Gain.AtOrAbove != nil {
			gm.AtOrAbove = *c.Gain.AtOrAbove
		}
		sc.Gain = &gm
	}
	return sc, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}
