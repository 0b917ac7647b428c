package config

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

const twoDevices = `
devices:
  - name: can0
    bus: "0"
    chip_select: "0"
  - name: can1
    bus: "0"
    chip_select: "1"
    baud_hz: 4000000
    mode: 3
    cs_pin: GPIO25
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp2515.yaml")
	test.That(t, os.WriteFile(path, []byte(twoDevices), 0o600), test.ShouldBeNil)

	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Devices, test.ShouldResemble, []DeviceConfig{
		{Name: "can0", Bus: "0", ChipSelect: "0", BaudHz: DefaultBaudHz},
		{Name: "can1", Bus: "0", ChipSelect: "1", BaudHz: 4000000, Mode: 3, CSPin: "GPIO25"},
	})
	test.That(t, cfg.Devices[1].Port(), test.ShouldEqual, "SPI0.1")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to read config file")

	_, err = FromBytes([]byte("devices: ["))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to parse config")
}

func TestConfigValidate(t *testing.T) {
	valid := DeviceConfig{Name: "can0", Bus: "0", ChipSelect: "1"}
	test.That(t, valid.Validate("path"), test.ShouldBeNil)

	for _, tc := range []struct {
		name   string
		modify func(*DeviceConfig)
		substr string
	}{
		{"missing name", func(d *DeviceConfig) { d.Name = "" }, "name"},
		{"missing bus", func(d *DeviceConfig) { d.Bus = "" }, "bus"},
		{"missing chip select", func(d *DeviceConfig) { d.ChipSelect = "" }, "chip_select"},
		{"non-numeric bus", func(d *DeviceConfig) { d.Bus = "spi0" }, "bus must be a number"},
		{"non-numeric chip select", func(d *DeviceConfig) { d.ChipSelect = "a" }, "chip_select must be a number"},
		{"baud too fast", func(d *DeviceConfig) { d.BaudHz = MaxBaudHz + 1 }, "exceeds"},
		{"unsupported mode", func(d *DeviceConfig) { d.Mode = 1 }, "mode must be 0 or 3"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dev := valid
			tc.modify(&dev)
			err := dev.Validate("path")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, "path")
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.substr)
		})
	}

	cfg := Config{Devices: []DeviceConfig{valid, {Name: "can1"}}}
	err := cfg.Validate("devices")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "devices.1")

	cfg = Config{Devices: []DeviceConfig{valid, valid}}
	err = cfg.Validate("devices")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate device name")
}

func TestDevice(t *testing.T) {
	cfg, err := FromBytes([]byte(twoDevices))
	test.That(t, err, test.ShouldBeNil)

	dev, err := cfg.Device("can1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dev.CSPin, test.ShouldEqual, "GPIO25")

	_, err = cfg.Device("")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "2 devices")

	_, err = cfg.Device("can9")
	test.That(t, err, test.ShouldNotBeNil)

	single := Config{Devices: cfg.Devices[:1]}
	dev, err = single.Device("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dev.Name, test.ShouldEqual, "can0")
}
