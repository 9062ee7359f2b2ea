package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Init(Options{JSON: true, Out: &buf})

	l := WithComponent("pipeline")
	l.Debug().Msg("hidden")
	l.Info().Int("highlights", 2).Msg("done")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "pipeline", line["component"])
	assert.Equal(t, "done", line["message"])
	assert.Equal(t, 2.0, line["highlights"])
}

func TestInitVerbose(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	Init(Options{Verbose: true, Out: &buf})
	l := WithComponent("audio")
	l.Debug().Msg("frame stats")

	assert.Contains(t, buf.String(), "frame stats")
	assert.Contains(t, buf.String(), "audio")
}
