package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyconv/internal/config"
	"skyconv/internal/testutil"
)

func TestEngine_RunWritesOutputAndMetrics(t *testing.T) {
	dir := t.TempDir()
	in := testutil.WritePQP(t, dir, "lib.pqp", testutil.Scenario())
	cfg := config.Config{
		Input:       in,
		Output:      filepath.Join(dir, "skyline.tsv"),
		MetricsFile: filepath.Join(dir, "skyconv.prom"),
		Log:         config.LogConfig{Level: "error"},
	}

	e, err := Bootstrap(cfg)
	require.NoError(t, err)
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pqp", res.Format)
	assert.Equal(t, 2, res.Written)

	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "skyconv_transitions_written_total 2")
	assert.Contains(t, string(prom), "skyconv_decoys_removed_total 1")
}

func TestEngine_MetricsWrittenOnFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		Input:       filepath.Join(dir, "missing.tsv"),
		Output:      filepath.Join(dir, "skyline.tsv"),
		MetricsFile: filepath.Join(dir, "skyconv.prom"),
		Log:         config.LogConfig{Level: "error"},
	}
	e, err := Bootstrap(cfg)
	require.NoError(t, err)
	_, err = e.Run(context.Background())
	require.Error(t, err)

	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "skyconv_last_success_timestamp_seconds 0")
	_, err = os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(err))
}
