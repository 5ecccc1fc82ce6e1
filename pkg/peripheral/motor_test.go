package peripheral

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quadrover/i2clink/pkg/protocol"
)

func TestMotorsLifecycle(t *testing.T) {
	m := NewMotors()
	require.False(t, m.Enabled())
	require.Equal(t, ErrDisabled, m.Stop())
	require.Equal(t, ErrDisabled, m.SetSpeeds(protocol.Speeds{1, 2, 3, 4}))

	m.Enable()
	require.True(t, m.Enabled())
	require.NoError(t, m.SetSpeeds(protocol.Speeds{1, 2, 3, 4}))
	require.Equal(t, protocol.Speeds{1, 2, 3, 4}, m.Speeds())

	require.NoError(t, m.Stop())
	require.Equal(t, protocol.Speeds{}, m.Speeds())

	require.NoError(t, m.SetSpeeds(protocol.Speeds{5, 5, 5, 5}))
	m.Disable()
	require.False(t, m.Enabled())
	// disable stops the motors
	require.Equal(t, protocol.Speeds{}, m.Speeds())
}
