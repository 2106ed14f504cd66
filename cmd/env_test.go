package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examcoach/internal/config"
)

func TestParseNow(t *testing.T) {
	now, err := parseNow("2025-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), now())

	now, err = parseNow("2025-03-04T10:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, now().Equal(time.Date(2025, 3, 4, 8, 30, 0, 0, time.UTC)))

	_, err = parseNow("yesterday")
	assert.Error(t, err)

	now, err = parseNow("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), now(), time.Minute)
}

func TestResolveDBPath_Explicit(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "coach.db")
	got, err := resolveDBPath(config.Config{DBPath: want})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.DirExists(t, filepath.Dir(want))
}

func TestLastCmd_Args(t *testing.T) {
	assert.NoError(t, lastCmd.Args(lastCmd, nil))
	assert.NoError(t, lastCmd.Args(lastCmd, []string{"exam"}))
	assert.NoError(t, lastCmd.Args(lastCmd, []string{"coaching"}))
	assert.Error(t, lastCmd.Args(lastCmd, []string{"lesson"}))
	assert.Error(t, lastCmd.Args(lastCmd, []string{"exam", "coaching"}))
}
