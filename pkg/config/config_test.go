package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiredFieldMissing(t *testing.T) {
	t.Setenv("CACHE_ROOT_DIR", "")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	cfg, err := New()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required config")
	assert.Contains(t, err.Error(), "CACHE_ROOT_DIR")
	assert.Contains(t, err.Error(), "cache_root_dir")
}

func TestNew_WithEnvVar(t *testing.T) {
	t.Setenv("CACHE_ROOT_DIR", "/tmp/pageflow-cache")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pageflow-cache", cfg.CacheRootDir)
}

func TestNew_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
cache_root_dir: /data/pageflow
page_width: 600
default_language: german
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", configPath)

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/data/pageflow", cfg.CacheRootDir)
	assert.Equal(t, 600, cfg.PageWidth)
	assert.Equal(t, "german", cfg.DefaultLanguage)
}

func TestNew_EnvVarOverridesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
cache_root_dir: /data/from-file
page_width: 600
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("CACHE_ROOT_DIR", "/data/from-env")
	t.Setenv("PAGE_WIDTH", "480")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/data/from-env", cfg.CacheRootDir)
	assert.Equal(t, 480, cfg.PageWidth)
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("CACHE_ROOT_DIR", "/tmp/pageflow-cache")
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.CacheVersion)
	assert.Equal(t, 8*1024, cfg.XMLWindowSize)
	assert.Equal(t, 4*1024, cfg.WordWindowSize)
	assert.Equal(t, 480, cfg.PageWidth)
	assert.Equal(t, 800, cfg.PageHeight)
	assert.Equal(t, "basic", cfg.DefaultLanguage)
}

func TestNewForTest(t *testing.T) {
	cfg := NewForTest()
	assert.NotEmpty(t, cfg.CacheRootDir)
	assert.Equal(t, 480, cfg.PageWidth)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "cache_root_dir", toSnakeCase("CacheRootDir"))
	assert.Equal(t, "page_width", toSnakeCase("PageWidth"))
	assert.Equal(t, "default_language", toSnakeCase("DefaultLanguage"))
}
