package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_LevelAndFile(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	path := filepath.Join(t.TempDir(), "battle.log")
	var console bytes.Buffer
	l, closeFn, err := initTo(&console, "warn", path)
	require.NoError(t, err)

	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	l.Info().Msg("dropped")
	l.Warn().Str("side", "red").Msg("tactical link lost")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tactical link lost")
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, console.String(), "tactical link lost")
	assert.Contains(t, console.String(), "logging_test.go:")
}

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	var console bytes.Buffer
	_, _, err := initTo(&console, "chatty", "")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInit_BadFile(t *testing.T) {
	var console bytes.Buffer
	_, _, err := initTo(&console, "info", filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}
