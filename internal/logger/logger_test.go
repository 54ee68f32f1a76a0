package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, true)
	l.Info().Str("blobId", "abc").Msg("stored")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "stored", line["message"])
	require.Equal(t, "abc", line["blobId"])
}

func TestNew_ConsoleWithoutColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	l.Warn().Msg("fallback")
	require.Contains(t, buf.String(), "fallback")
	require.NotContains(t, buf.String(), "\x1b[")
}

func TestConfigure_UsesEnvLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	t.Setenv("LOG_LEVEL", "error")
	Configure("")
	require.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	Configure("debug")
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
