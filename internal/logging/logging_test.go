package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		want    zerolog.Level
		wantErr bool
	}{
		{"default", Config{}, zerolog.InfoLevel, false},
		{"explicit warn", Config{Level: "warn"}, zerolog.WarnLevel, false},
		{"debug overrides level", Config{Level: "error", Debug: true}, zerolog.DebugLevel, false},
		{"bad level", Config{Level: "loud"}, zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config, &bytes.Buffer{})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info"}, &buf)
	require.NoError(t, err)

	logger.Info().Str("component", "audit").Msg("event appended")
	logger.Debug().Msg("suppressed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "audit", line["component"])
	assert.Equal(t, "event appended", line["message"])
	assert.Contains(t, line, "time")
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{Level: "info", Output: "stderr", Format: "console"}.Validate())
	assert.Error(t, Config{Output: "syslog"}.Validate())
	assert.Error(t, Config{Format: "xml"}.Validate())
	assert.Error(t, Config{Level: "loud"}.Validate())
}

func TestWithComponent(t *testing.T) {
	require.NoError(t, Init(Config{Level: "debug", Output: "stderr"}))
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	componentLogger := WithComponent("inventory")
	assert.NotEqual(t, zerolog.Disabled, componentLogger.GetLevel())
}
