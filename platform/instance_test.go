package platform

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireSingleInstance(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	name := fmt.Sprintf("msiflow-test-%d", os.Getpid())

	assert.False(t, IsSingleInstanceRunning(name))

	release, ok := AcquireSingleInstance(name)
	require.True(t, ok)
	require.NotNil(t, release)
	assert.True(t, IsSingleInstanceRunning(name))

	_, ok = AcquireSingleInstance(name)
	assert.False(t, ok, "second acquire must fail while the first is held")

	release()
	assert.False(t, IsSingleInstanceRunning(name))

	release, ok = AcquireSingleInstance(name)
	require.True(t, ok)
	release()
}

func TestIsElevatedDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { IsElevated() })
}
