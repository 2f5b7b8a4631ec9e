package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the station configuration.
type Config struct {
	Serial   SerialConfig    `yaml:"serial"`
	Station  StationConfig   `yaml:"station"`
	Channels []ChannelConfig `yaml:"channels"`
	Mock     MockConfig      `yaml:"mock"`
	Metrics  MetricsConfig   `yaml:"metrics"`
	Monitor  MonitorConfig   `yaml:"monitor"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// StationConfig contains sampling loop parameters.
type StationConfig struct {
	Period time.Duration `yaml:"period"` // Sampling period, fixed for the process lifetime
}

// ChannelConfig describes one sensor channel.
type ChannelConfig struct {
	ID        string `yaml:"id"`
	Label     string `yaml:"label"`
	Kind      string `yaml:"kind"`     // analog | digital | unimplemented
	Input     uint8  `yaml:"input"`    // ADC channel or pin index
	Strategy  string `yaml:"strategy"` // range | presence
	High      uint16 `yaml:"high"`
	Ceiling   uint16 `yaml:"ceiling"` // Range values above this are reported as failed readings
	ActiveLow bool   `yaml:"active_low"`
}

// MockConfig contains simulated sensor parameters.
type MockConfig struct {
	Base            float64       `yaml:"base"`             // Mean raw value
	Amplitude       float64       `yaml:"amplitude"`        // Peak deviation from Base
	Period          time.Duration `yaml:"period"`           // Waveform period
	NoiseLevel      float64       `yaml:"noise_level"`      // Noise amplitude in raw counts
	ConversionDelay time.Duration `yaml:"conversion_delay"` // Simulated conversion time
	FailEvery       int           `yaml:"fail_every"`       // Every Nth conversion fails (0 = never)
}

// MetricsConfig contains the Prometheus endpoint configuration.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // Empty disables the endpoint
}

const (
	DefaultBaudRate = 9600
	DefaultPeriod   = 5 * time.Second
	DefaultHigh     = 3000
	DefaultCeiling  = 5000
	DefaultWindow   = 10 * time.Minute
)

// MonitorConfig contains receiver display parameters.
type MonitorConfig struct {
	Window time.Duration `yaml:"window"` // History shown per channel
}

// Default returns the station configuration observed on the reference hardware:
// an unimplemented DHT11 channel followed by two analog channels.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "/dev/ttyUSB0",
			BaudRate: DefaultBaudRate,
		},
		Station: StationConfig{
			Period: DefaultPeriod,
		},
		Channels: DefaultChannels(),
		Mock: MockConfig{
			Base:            2500,
			Amplitude:       1200,
			Period:          time.Minute,
			NoiseLevel:      40,
			ConversionDelay: 50 * time.Microsecond,
			FailEvery:       0,
		},
		Monitor: MonitorConfig{
			Window: DefaultWindow,
		},
	}
}

// DefaultChannels returns the channel table of the reference hardware.
func DefaultChannels() []ChannelConfig {
	return []ChannelConfig{
		{ID: "dht11", Label: "DHT11", Kind: "unimplemented"},
		{ID: "soil", Label: "Soil Moisture", Kind: "analog", Input: 0, Strategy: "range", High: DefaultHigh, Ceiling: DefaultCeiling},
		{ID: "rain", Label: "Rain", Kind: "analog", Input: 8, Strategy: "range", High: DefaultHigh, Ceiling: DefaultCeiling},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Channels replace the default table wholesale.
	cfg.Channels = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks configuration correctness. It does not mutate the configuration.
func (c *Config) Validate() error {
	if c.Station.Period <= 0 {
		return errors.New("station: period must be > 0")
	}
	if c.Monitor.Window < 0 {
		return errors.New("monitor: window must be >= 0")
	}
	if len(c.Channels) == 0 {
		return errors.New("at least one channel required")
	}

	seen := make(map[string]struct{}, len(c.Channels))
	for i, ch := range c.Channels {
		if ch.ID == "" {
			return fmt.Errorf("channel #%d: id required", i)
		}
		if _, dup := seen[ch.ID]; dup {
			return fmt.Errorf("channel %q: duplicate id", ch.ID)
		}
		seen[ch.ID] = struct{}{}

		if ch.Label == "" {
			return fmt.Errorf("channel %q: label required", ch.ID)
		}

		switch ch.Kind {
		case "analog", "digital", "unimplemented":
		default:
			return fmt.Errorf("channel %q: unknown kind %q", ch.ID, ch.Kind)
		}

		switch ch.Strategy {
		case "", "range", "presence":
		default:
			return fmt.Errorf("channel %q: unknown strategy %q", ch.ID, ch.Strategy)
		}

		// Thresholds only bound range classification; presence ignores them.
		if ch.Strategy == "range" || ch.Strategy == "" && ch.Kind == "analog" {
			ceiling := ch.Ceiling
			if ceiling == 0 {
				ceiling = DefaultCeiling
			}
			if ch.High > ceiling {
				return fmt.Errorf("channel %q: high %d above ceiling %d", ch.ID, ch.High, ceiling)
			}
		}
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Station.Period == 0 {
		c.Station.Period = def.Station.Period
	}

	if len(c.Channels) == 0 {
		c.Channels = def.Channels
	}
	for i := range c.Channels {
		ch := &c.Channels[i]
		if ch.Kind == "unimplemented" {
			continue
		}
		if ch.Strategy == "" && ch.Kind == "digital" {
			ch.Strategy = "presence"
		}
		if ch.Strategy == "" {
			ch.Strategy = "range"
		}
		if ch.Strategy == "range" && ch.Ceiling == 0 {
			ch.Ceiling = DefaultCeiling
		}
	}

	if c.Monitor.Window == 0 {
		c.Monitor.Window = def.Monitor.Window
	}

	if c.Mock.Period == 0 {
		c.Mock.Period = def.Mock.Period
	}
}
