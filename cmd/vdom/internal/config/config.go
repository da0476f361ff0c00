// Package config resolves vdom CLI settings from viper and the surrounding
// Go module.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
)

// Viper keys.
const (
	KeyLogLevel = "log-level"
	KeyMaxDepth = "render.max-depth"
	KeyTitle    = "render.title"
	KeyDocument = "render.document"
	KeyAddr     = "serve.addr"
	KeyDebounce = "serve.debounce"
)

// Config contains resolved settings.
type Config struct {
	LogLevel slog.Level
	MaxDepth int
	Title    string
	Document bool
	Addr     string
	Debounce time.Duration
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyMaxDepth, 256)
	v.SetDefault(KeyTitle, "")
	v.SetDefault(KeyDocument, false)
	v.SetDefault(KeyAddr, "127.0.0.1:7331")
	v.SetDefault(KeyDebounce, 100*time.Millisecond)
}

// Load reads settings from v. An empty title defaults to the name of the Go
// module containing dir.
func Load(v *viper.Viper, dir string) (*Config, error) {
	level, err := ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}
	maxDepth := v.GetInt(KeyMaxDepth)
	if maxDepth < 1 {
		return nil, fmt.Errorf("%s must be positive, got %d", KeyMaxDepth, maxDepth)
	}
	debounce := v.GetDuration(KeyDebounce)
	if debounce < 0 {
		return nil, fmt.Errorf("%s must not be negative, got %s", KeyDebounce, debounce)
	}
	title := strings.TrimSpace(v.GetString(KeyTitle))
	if title == "" {
		title = DefaultTitle(dir)
	}
	return &Config{
		LogLevel: level,
		MaxDepth: maxDepth,
		Title:    title,
		Document: v.GetBool(KeyDocument),
		Addr:     v.GetString(KeyAddr),
		Debounce: debounce,
	}, nil
}

// ParseLevel converts debug, info, warn, or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger returns a text logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// DefaultTitle returns the last path element of the module containing dir,
// or the base name of dir outside a module.
func DefaultTitle(dir string) string {
	base := filepath.Base(dir)
	if root, ok := findModuleRoot(dir); ok {
		data, err := os.ReadFile(filepath.Join(root, "go.mod"))
		if err == nil {
			if modPath := modfile.ModulePath(data); modPath != "" {
				if prefix, _, ok := module.SplitPathVersion(modPath); ok {
					parts := strings.Split(prefix, "/")
					base = parts[len(parts)-1]
				}
			}
		}
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "vdom"
	}
	return base
}

func findModuleRoot(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
