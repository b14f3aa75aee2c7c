package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "analysis.requests", cfg.RabbitMQRequestQueue)
	assert.Equal(t, 5*time.Second, cfg.SeekTimeout)
	assert.Equal(t, 200, cfg.ThumbWidth)
	assert.Equal(t, 150, cfg.ThumbHeight)
	assert.Equal(t, []string{"markdown", "html"}, cfg.ReportFormats)
	assert.Equal(t, "dee1.mp4", cfg.DeepfakeMarker)
	assert.Empty(t, cfg.DemoCatalog)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEEK_TIMEOUT", "750ms")
	t.Setenv("REPORT_FORMATS", "html")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("GENUINE_MARKER", "real.mp4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.SeekTimeout)
	assert.Equal(t, []string{"html"}, cfg.ReportFormats)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, "real.mp4", cfg.GenuineMarker)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("THUMB_WIDTH", "wide")
	_, err := Load()
	assert.Error(t, err)
}
