package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("pkg", "cache").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"pkg":"cache"`)
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "console", &buf)
	require.NoError(t, err)

	logger.Debug().Msg("scan started")
	assert.Contains(t, buf.String(), "scan started")
}

func TestNew_Silent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("silent", "json", &buf)
	require.NoError(t, err)

	logger.Error().Msg("nothing")
	assert.Empty(t, buf.String())
}

func TestNew_RejectsUnknownValues(t *testing.T) {
	_, err := New("loud", "json", &bytes.Buffer{})
	assert.Error(t, err)
	_, err = New("info", "xml", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, zerolog.ErrorLevel, lvl)
}
