package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("json", "info", &buf)
	require.NoError(t, err)

	log.Info().Str("file", "nov.csv").Msg("statement loaded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "nov.csv", line["file"])
	assert.Equal(t, "statement loaded", line["message"])
	assert.Contains(t, line, "time")
}

func TestNew_Human(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("human", "debug", &buf)
	require.NoError(t, err)

	log.Debug().Msg("migration applied")
	assert.Contains(t, buf.String(), "DBG")
	assert.Contains(t, buf.String(), "migration applied")
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("json", "warn", &buf)
	require.NoError(t, err)

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_DefaultLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("json", "", &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New("json", "loud", &bytes.Buffer{})
	assert.Error(t, err)
}
