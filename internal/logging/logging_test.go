package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func restore(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_Level(t *testing.T) {
	restore(t)
	var buf bytes.Buffer

	Setup("warn", false, &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestSetup_UnknownLevelFallsBackToInfo(t *testing.T) {
	restore(t)
	var buf bytes.Buffer

	Setup("loud", false, &buf)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.Contains(t, buf.String(), "Unknown log level")
}

func TestSetup_Pretty(t *testing.T) {
	restore(t)
	var buf bytes.Buffer

	Setup("debug", true, &buf)
	log.Debug().Str("board_id", "b1").Msg("pretty line")

	assert.Contains(t, buf.String(), "pretty line")
	assert.Contains(t, buf.String(), "board_id=")
	assert.NotContains(t, buf.String(), `"message"`)
}
