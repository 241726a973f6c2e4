package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the project configuration file, looked up from the
// working directory upwards.
const ConfigFileName = "still.yaml"

// EnvPrefix prefixes environment overrides: STILL_OUTPUT_DIR sets output_dir.
const EnvPrefix = "STILL_"

// maxUpwardSearchLevels limits how far FindConfig walks up.
const maxUpwardSearchLevels = 10

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the project configuration.
type Config struct {
	OutputDir      string `koanf:"output_dir"`
	RuntimeModule  string `koanf:"runtime_module"`
	RuntimeVersion string `koanf:"runtime_version"`
	Jobs           int    `koanf:"jobs"`
	Cache          string `koanf:"cache"`
	Color          string `koanf:"color"`
	LogLevel       string `koanf:"log_level"`

	// File is the configuration file that was loaded, if any.
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"output_dir":      "out",
		"runtime_module":  DefaultRuntimeModule,
		"runtime_version": "",
		"jobs":            0,
		"cache":           "",
		"color":           ColorAuto,
		"log_level":       "warn",
	}
}

// FindConfig walks up from dir looking for still.yaml. It returns ""
// when there is none.
func FindConfig(dir string) string {
	for i := 0; i < maxUpwardSearchLevels; i++ {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load builds the configuration from defaults, then the config file at
// path (skipped when empty), then STILL_ environment variables, then the
// flags that were explicitly set.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) source() string {
	if c.File == "" {
		return "config"
	}
	return c.File
}

func (c *Config) validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("%s: jobs must not be negative, got %d", c.source(), c.Jobs)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", c.source(), c.Color)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%s: %w", c.source(), err)
	}
	if strings.ContainsAny(c.RuntimeModule, " \t\n;") {
		return fmt.Errorf("%s: runtime_module %q is not a Rust path", c.source(), c.RuntimeModule)
	}
	if c.RuntimeVersion != "" {
		if _, err := semver.NewConstraint(c.RuntimeVersion); err != nil {
			return fmt.Errorf("%s: runtime_version %q: %w", c.source(), c.RuntimeVersion, err)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.RuntimeModule == "" {
		c.RuntimeModule = DefaultRuntimeModule
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	// relative paths are anchored at the config file
	if c.File != "" {
		base := filepath.Dir(c.File)
		if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(base, c.OutputDir)
		}
		if c.Cache != "" && c.Cache != ":memory:" && !filepath.IsAbs(c.Cache) {
			c.Cache = filepath.Join(base, c.Cache)
		}
	}
}

// Level parses log_level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

// CheckRuntime verifies that the runtime API this compiler emits
// satisfies runtime_version. An empty constraint accepts any runtime.
func (c *Config) CheckRuntime() error {
	if c.RuntimeVersion == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.RuntimeVersion)
	if err != nil {
		return fmt.Errorf("runtime_version %q: %w", c.RuntimeVersion, err)
	}
	emitted, err := semver.NewVersion(RuntimeAPIVersion)
	if err != nil {
		return fmt.Errorf("runtime API version %q: %w", RuntimeAPIVersion, err)
	}
	if !constraint.Check(emitted) {
		return fmt.Errorf("this compiler emits runtime API %s, which does not satisfy runtime_version %q",
			RuntimeAPIVersion, c.RuntimeVersion)
	}
	return nil
}
