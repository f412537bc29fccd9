package pidfile_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/pidfile"
)

func TestPIDFile_AcquireAndRelease(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "run", "automation.pid")
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	pid, ok, err := pf.Read()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, pf.Release())
	_, ok, err = pf.Read()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPIDFile_RefusesLiveHolder(t *testing.T) {
	// Arrange: PID 1 is always alive
	path := filepath.Join(t.TempDir(), "automation.pid")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0o644))

	// Act
	err := pidfile.New(path).Acquire()

	// Assert
	assert.ErrorIs(t, err, pidfile.ErrAlreadyRunning)
}

func TestPIDFile_ReplacesGarbage(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "automation.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))
}

func TestPIDFile_ReplacesEmptyFileOnEveryAttempt(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "automation.pid")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	pf := pidfile.New(path)

	for attempt := 1; attempt <= 3; attempt++ {
		// Act
		err := pf.Acquire()

		// Assert
		require.NoError(t, err, "attempt %d", attempt)
		pid, ok, err := pf.Read()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, os.Getpid(), pid)

		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
}
