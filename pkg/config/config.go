// Package config loads and validates the YAML configuration shared by
// the daemons in cmd/.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document.
type Config struct {
	Bus       BusConfig       `yaml:"bus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BusConfig configures the two-wire bus and the transaction engine.
type BusConfig struct {
	// ID is the bus number on the host (e.g. 1 for /dev/i2c-1).
	ID int `yaml:"id"`
	// Address is the 7-bit peripheral address, e.g. "0x43".
	Address string `yaml:"address"`
	// TxDelayUs is the write-to-read settle delay in microseconds.
	TxDelayUs int `yaml:"tx_delay_us"`
}

// TelemetryConfig configures the optional MQTT telemetry output.
type TelemetryConfig struct {
	// MQTTURL is the broker URL, e.g. "mqtt://localhost:1883/i2clink/".
	// Empty disables telemetry.
	MQTTURL string `yaml:"mqtt_url"`
}

// Defaults for fields left unset in the document.
const (
	DefaultAddress   = "0x43"
	DefaultBusID     = 1
	DefaultTxDelayUs = 700
)

// Load reads, parses, normalizes and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses, normalizes and validates a YAML document.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.Bus.ID == 0 {
		c.Bus.ID = DefaultBusID
	}
	if c.Bus.Address == "" {
		c.Bus.Address = DefaultAddress
	}
	if c.Bus.TxDelayUs == 0 {
		c.Bus.TxDelayUs = DefaultTxDelayUs
	}
}

// PeripheralAddr parses the configured 7-bit address.
func (c *Config) PeripheralAddr() (byte, error) {
	v, err := strconv.ParseUint(c.Bus.Address, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("bus address %q: %w", c.Bus.Address, err)
	}
	if v > 0x7f {
		return 0, fmt.Errorf("bus address %q: not a 7-bit address", c.Bus.Address)
	}
	return byte(v), nil
}

// TxDelay returns the configured settle delay.
func (c *Config) TxDelay() time.Duration {
	return time.Duration(c.Bus.TxDelayUs) * time.Microsecond
}
