package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults 测试默认配置加载
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "tongyi", cfg.LLM.Provider)
	assert.Equal(t, float64(95), cfg.Splitter.BreakpointPercentile)
	assert.Equal(t, 1, cfg.Splitter.BufferSize)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.False(t, cfg.Queue.Enable)
}

// TestLoadFromFile 测试从配置文件加载
func TestLoadFromFile(t *testing.T) {
	content := `
llm:
  provider: openai
  model: gpt-4o-mini
  api_key: ${TEST_LLM_API_KEY}
splitter:
  breakpoint_percentile: 90
  max_workers: 8
queue:
  enable: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("TEST_LLM_API_KEY", "sk-test-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test-key", cfg.LLM.APIKey, "密钥引用应展开为环境变量值")
	assert.Equal(t, float64(90), cfg.Splitter.BreakpointPercentile)
	assert.Equal(t, 8, cfg.Splitter.MaxWorkers)
	assert.True(t, cfg.Queue.Enable)

	// 未覆盖的配置保持默认值
	assert.Equal(t, "local", cfg.Storage.Type)
}

// TestSetupLogger 测试日志记录器创建
func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(LogConfig{Level: "debug"})
	assert.Equal(t, "debug", logger.GetLevel().String())

	// 非法级别回落到info
	logger = SetupLogger(LogConfig{Level: "bogus"})
	assert.Equal(t, "info", logger.GetLevel().String())
}
