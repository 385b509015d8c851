package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestComponent_TagsSubsystem(t *testing.T) {
	for _, name := range []string{"board", "remote"} {
		t.Run(name, func(t *testing.T) {
			buf := captureGlobal(t)

			logger := Component(name)
			logger.Warn().Int64("card_id", 42).Msg("comment page dropped")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, name, entry[ComponentKey])
			assert.Equal(t, "warn", entry["level"])
			assert.Equal(t, "comment page dropped", entry["message"])
			assert.InDelta(t, 42, entry["card_id"], 0)
		})
	}
}

func TestComponent_ReadsGlobalAtCallTime(t *testing.T) {
	before := Component("board")
	buf := captureGlobal(t)

	before.Info().Msg("old writer")
	assert.Empty(t, buf.String(), "logger built before the swap keeps its writer")

	after := Component("board")
	after.Info().Msg("new writer")
	assert.Contains(t, buf.String(), `"cmp":"board"`)
}
