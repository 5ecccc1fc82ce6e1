package config

import "fmt"

// delay bounds in microseconds; above maxTxDelayUs the configuration
// is more likely a typo than a slow peripheral.
const (
	minTxDelayUs = 0
	maxTxDelayUs = 5000
)

// Validate checks the normalized configuration.
func (c *Config) Validate() error {
	if c.Bus.ID < 0 {
		return fmt.Errorf("bus id %d: must not be negative", c.Bus.ID)
	}
	if _, err := c.PeripheralAddr(); err != nil {
		return err
	}
	if c.Bus.TxDelayUs < minTxDelayUs || c.Bus.TxDelayUs > maxTxDelayUs {
		return fmt.Errorf("tx_delay_us %d: out of range [%d, %d]", c.Bus.TxDelayUs, minTxDelayUs, maxTxDelayUs)
	}
	return nil
}
