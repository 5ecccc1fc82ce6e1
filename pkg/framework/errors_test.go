package framework

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregatedError(t *testing.T) {
	var agg AggregatedError
	require.NoError(t, agg.Aggregate())

	errA := errors.New("a")
	agg.Add(nil, errA)
	require.Equal(t, errA, agg.Aggregate())

	errB := errors.New("b")
	agg.Add(errB)
	err := agg.Aggregate()
	require.True(t, errors.Is(err, errA))
	require.True(t, errors.Is(err, errB))
	require.Contains(t, err.Error(), "multiple errors:")
}
