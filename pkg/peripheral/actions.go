package peripheral

import "github.com/quadrover/i2clink/pkg/protocol"

// Action executes one command with validated arguments and reports the
// outcome speeds. Implementations must not block: a slow action
// returns ErrBusy and finishes out of band.
type Action interface {
	Invoke(args protocol.Speeds) (protocol.Speeds, error)
}

// ActionFunc is the func form of Action.
type ActionFunc func(protocol.Speeds) (protocol.Speeds, error)

// Invoke implements Action.
func (f ActionFunc) Invoke(args protocol.Speeds) (protocol.Speeds, error) {
	return f(args)
}

// MotorActions binds the full command vocabulary to m.
func MotorActions(m *Motors) map[protocol.Command]Action {
	return map[protocol.Command]Action{
		protocol.CmdPing: ActionFunc(func(protocol.Speeds) (protocol.Speeds, error) {
			return protocol.Speeds{}, nil
		}),
		protocol.CmdSetSpeed: ActionFunc(func(args protocol.Speeds) (protocol.Speeds, error) {
			if err := m.SetSpeeds(args); err != nil {
				return protocol.Speeds{}, err
			}
			return m.Speeds(), nil
		}),
		protocol.CmdStop: ActionFunc(func(protocol.Speeds) (protocol.Speeds, error) {
			if err := m.Stop(); err != nil {
				return protocol.Speeds{}, err
			}
			return m.Speeds(), nil
		}),
		protocol.CmdGetStatus: ActionFunc(func(protocol.Speeds) (protocol.Speeds, error) {
			return m.Speeds(), nil
		}),
		protocol.CmdEnable: ActionFunc(func(protocol.Speeds) (protocol.Speeds, error) {
			m.Enable()
			return protocol.Speeds{}, nil
		}),
		protocol.CmdDisable: ActionFunc(func(protocol.Speeds) (protocol.Speeds, error) {
			m.Disable()
			return protocol.Speeds{}, nil
		}),
	}
}
