package walletauth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProgressValues(t *testing.T) {
	require.Equal(t, 20, ProgressOf(StepDetection))
	require.Equal(t, 40, ProgressOf(StepConnection))
	require.Equal(t, 60, ProgressOf(StepAuthentication))
	require.Equal(t, 80, ProgressOf(StepProfile))
	require.Equal(t, 100, ProgressOf(StepSuccess))
	require.Equal(t, 0, ProgressOf(Step("bogus")))
}

func TestStepMonotonicity(t *testing.T) {
	for _, s := range Steps() {
		next, ok := Next(s)
		if !ok {
			require.Equal(t, StepSuccess, s)
			continue
		}
		require.Greater(t, ProgressOf(next), ProgressOf(s))
	}
}

func TestStepBoundaries(t *testing.T) {
	_, ok := Next(StepSuccess)
	require.False(t, ok)

	_, ok = Previous(StepDetection)
	require.False(t, ok)

	prev, ok := Previous(StepConnection)
	require.True(t, ok)
	require.Equal(t, StepDetection, prev)

	next, ok := Next(StepProfile)
	require.True(t, ok)
	require.Equal(t, StepSuccess, next)
}

func TestStepsReturnsCopy(t *testing.T) {
	steps := Steps()
	steps[0] = StepSuccess
	require.Equal(t, StepDetection, Steps()[0])
}
