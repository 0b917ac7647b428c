// Package config defines the on-disk description of the MCP2515 devices attached to a host.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaudHz is the SPI clock used when a device does not set baud_hz. The MCP2515 accepts
	// up to 10 MHz.
	DefaultBaudHz = 10_000_000

	// MaxBaudHz is the fastest SPI clock the MCP2515 supports.
	MaxBaudHz = 10_000_000
)

// Config lists the devices the command line tool can talk to.
type Config struct {
	Devices []DeviceConfig `json:"devices" yaml:"devices"`
}

// DeviceConfig describes one MCP2515 on an SPI bus.
type DeviceConfig struct {
	Name       string `json:"name" yaml:"name"`
	Bus        string `json:"bus" yaml:"bus"`
	ChipSelect string `json:"chip_select" yaml:"chip_select"`
	BaudHz     uint   `json:"baud_hz,omitempty" yaml:"baud_hz,omitempty"`
	// Mode is the SPI mode. The MCP2515 supports modes 0 and 3.
	Mode uint `json:"mode,omitempty" yaml:"mode,omitempty"`
	// CSPin names a GPIO to drive as an active-low chip select instead of the bus's native one.
	CSPin string `json:"cs_pin,omitempty" yaml:"cs_pin,omitempty"`
}

// Load reads and validates a YAML config file, filling in defaults.
func Load(path string) (*Config, error) {
	//nolint:gosec
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return FromBytes(raw)
}

// FromBytes parses and validates YAML config contents, filling in defaults.
func FromBytes(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := cfg.Validate("devices"); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate(path string) error {
	seen := make(map[string]struct{}, len(cfg.Devices))
	for idx, dev := range cfg.Devices {
		devPath := fmt.Sprintf("%s.%d", path, idx)
		if err := dev.Validate(devPath); err != nil {
			return err
		}
		if _, ok := seen[dev.Name]; ok {
			return goutils.NewConfigValidationError(devPath, errors.Errorf("duplicate device name %q", dev.Name))
		}
		seen[dev.Name] = struct{}{}
	}
	return nil
}

// Validate ensures all parts of the device config are valid.
func (dev *DeviceConfig) Validate(path string) error {
	if dev.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if dev.Bus == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "bus")
	}
	if dev.ChipSelect == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "chip_select")
	}
	if _, err := strconv.ParseUint(dev.Bus, 10, 8); err != nil {
		return goutils.NewConfigValidationError(path, errors.Errorf("bus must be a number, got %q", dev.Bus))
	}
	if _, err := strconv.ParseUint(dev.ChipSelect, 10, 8); err != nil {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("chip_select must be a number, got %q", dev.ChipSelect))
	}
	if dev.BaudHz > MaxBaudHz {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("baud_hz %d exceeds the %d Hz maximum", dev.BaudHz, MaxBaudHz))
	}
	if dev.Mode != 0 && dev.Mode != 3 {
		return goutils.NewConfigValidationError(path, errors.Errorf("mode must be 0 or 3, got %d", dev.Mode))
	}
	return nil
}

// Device returns the device with the given name. An empty name selects the only configured
// device.
func (cfg *Config) Device(name string) (DeviceConfig, error) {
	if name == "" {
		if len(cfg.Devices) == 1 {
			return cfg.Devices[0], nil
		}
		return DeviceConfig{}, errors.Errorf("config has %d devices, pick one by name", len(cfg.Devices))
	}
	for _, dev := range cfg.Devices {
		if dev.Name == name {
			return dev, nil
		}
	}
	return DeviceConfig{}, errors.Errorf("no device named %q", name)
}

// Port returns the periph SPI port name, e.g. "SPI0.1".
func (dev DeviceConfig) Port() string {
	return fmt.Sprintf("SPI%s.%s", dev.Bus, dev.ChipSelect)
}

func (cfg *Config) applyDefaults() {
	for i := range cfg.Devices {
		if cfg.Devices[i].BaudHz == 0 {
			cfg.Devices[i].BaudHz = DefaultBaudHz
		}
	}
}
