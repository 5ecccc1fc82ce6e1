package peripheral

import (
	"errors"
	"sync"

	"github.com/golang/glog"

	"github.com/quadrover/i2clink/pkg/protocol"
)

// Domain errors reported by actions. The dispatch loop translates
// each into its error status; none of them abort the response.
var (
	// ErrDisabled rejects motion commands before Enable.
	ErrDisabled = errors.New("motors disabled")
	// ErrBusy indicates the action could not complete within the
	// transaction window. The host retries with GET_STATUS later.
	ErrBusy = errors.New("busy")
)

// Motors holds the commanded speed of each drive motor. It stands in
// for the real motor driver: speeds are validated upstream and passed
// through here.
type Motors struct {
	mu      sync.Mutex
	enabled bool
	speeds  protocol.Speeds
}

// NewMotors creates a Motors in the disabled state.
func NewMotors() *Motors {
	return &Motors{}
}

// Enable enables the motor controller.
func (m *Motors) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		m.enabled = true
		glog.V(1).Info("motors enabled")
	}
}

// Disable stops all motors and disables the controller.
func (m *Motors) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enabled {
		m.speeds = protocol.Speeds{}
		m.enabled = false
		glog.V(1).Info("motors disabled")
	}
}

// Enabled reports the controller state.
func (m *Motors) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Stop stops all motors immediately.
func (m *Motors) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return ErrDisabled
	}
	m.speeds = protocol.Speeds{}
	return nil
}

// SetSpeeds sets all motor speeds at once.
func (m *Motors) SetSpeeds(speeds protocol.Speeds) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return ErrDisabled
	}
	m.speeds = speeds
	return nil
}

// Speeds returns the currently commanded speeds.
func (m *Motors) Speeds() protocol.Speeds {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speeds
}
