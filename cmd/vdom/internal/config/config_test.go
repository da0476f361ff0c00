package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGoMod(t *testing.T, dir, modulePath string) {
	t.Helper()
	content := "module " + modulePath + "\n\ngo 1.24\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeGoMod(t, dir, "example.com/acme/storefront")

	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v, dir)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 256, cfg.MaxDepth)
	assert.Equal(t, "storefront", cfg.Title)
	assert.False(t, cfg.Document)
	assert.Equal(t, "127.0.0.1:7331", cfg.Addr)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyLogLevel, "DEBUG")
	v.Set(KeyMaxDepth, 32)
	v.Set(KeyTitle, "  Docs  ")
	v.Set(KeyDocument, true)
	v.Set(KeyDebounce, "250ms")

	cfg, err := Load(v, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 32, cfg.MaxDepth)
	assert.Equal(t, "Docs", cfg.Title)
	assert.True(t, cfg.Document)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
		msg  string
	}{
		{"log level", KeyLogLevel, "loud", "invalid log level"},
		{"max depth", KeyMaxDepth, 0, "must be positive"},
		{"debounce", KeyDebounce, "-1s", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.val)
			_, err := Load(v, t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDefaultTitle(t *testing.T) {
	t.Run("major version suffix", func(t *testing.T) {
		dir := t.TempDir()
		writeGoMod(t, dir, "github.com/acme/widgets/v2")
		nested := filepath.Join(dir, "pages", "home")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		assert.Equal(t, "widgets", DefaultTitle(nested))
	})

	t.Run("single element module", func(t *testing.T) {
		dir := t.TempDir()
		writeGoMod(t, dir, "site")
		assert.Equal(t, "site", DefaultTitle(dir))
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "key=value")
}
