package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-outreach/internal/archive"
	"github.com/jonathan/job-outreach/internal/config"
	"github.com/jonathan/job-outreach/internal/llm"
)

func TestNewArchiver(t *testing.T) {
	ctx := context.Background()

	a, err := newArchiver(ctx, config.Config{Archive: config.ArchiveLocal, ArchiveFolder: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &archive.Local{}, a)

	a, err = newArchiver(ctx, config.Config{Archive: config.ArchiveNone})
	require.NoError(t, err)
	assert.Nil(t, a)

	_, err = newArchiver(ctx, config.Config{Archive: "ftp"})
	assert.Error(t, err)
}

func TestOpenLedger_UnknownBackend(t *testing.T) {
	_, _, err := openLedger(context.Background(), config.Config{Ledger: "excel"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown ledger backend")
}

func TestLLMConfig(t *testing.T) {
	assert.Equal(t, llm.DefaultConfig().GetModel(llm.TierAdvanced), llmConfig(config.Config{}).GetModel(llm.TierAdvanced))

	c := llmConfig(config.Config{Model: "gemini-custom"})
	assert.Equal(t, "gemini-custom", c.GetModel(llm.TierAdvanced))
	assert.Equal(t, llm.DefaultConfig().GetModel(llm.TierLite), c.GetModel(llm.TierLite))
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, newLogger(config.Config{LogLevel: "debug", LogFormat: "json"}))
}
