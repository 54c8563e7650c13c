package fetch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	boom := errors.New("boom")

	ok := OK(3)
	v, err := ok.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.False(t, ok.IsFallback())
	assert.Equal(t, ok, ok.OrElse(9))

	failed := Failed[int](boom)
	_, err = failed.Unwrap()
	assert.ErrorIs(t, err, boom)

	degraded := failed.OrElse(9)
	assert.True(t, degraded.IsFallback())
	assert.Equal(t, "degraded", degraded.Status.String())
	v, err = degraded.Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.ErrorIs(t, degraded.Err, boom)
}
