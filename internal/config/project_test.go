package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, DefaultRuntimeModule, cfg.RuntimeModule)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.Equal(t, 0, cfg.Jobs)
	assert.Empty(t, cfg.Cache)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadFileAnchorsPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
output_dir: generated
runtime_module: still_core
jobs: 4
cache: .still/cache.db
color: never
log_level: debug
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "generated"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(dir, ".still/cache.db"), cfg.Cache)
	assert.Equal(t, "still_core", cfg.RuntimeModule)
	assert.Equal(t, 4, cfg.Jobs)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.Equal(t, path, cfg.File)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "jobs: 2\ncolor: never\n")
	t.Setenv("STILL_JOBS", "3")
	t.Setenv("STILL_COLOR", "always")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("jobs", 0, "")
	flags.String("color", "", "")
	flags.String("output-dir", "", "")
	require.NoError(t, flags.Parse([]string{"--jobs=7"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Jobs, "an explicit flag wins")
	assert.Equal(t, ColorAlways, cfg.Color, "env beats the file")
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir, "unset flags change nothing")
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative jobs", "jobs: -1\n"},
		{"color", "color: sometimes\n"},
		{"log level", "log_level: chatty\n"},
		{"runtime module", "runtime_module: \"crate; evil\"\n"},
		{"runtime version", "runtime_version: \"not a version\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path, nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "jobs: 1\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.Equal(t, path, FindConfig(nested))
	assert.Equal(t, path, FindConfig(root))
}

func TestCheckRuntime(t *testing.T) {
	tests := []struct {
		constraint string
		ok         bool
	}{
		{"", true},
		{"^0.4", true},
		{">= 0.4.0, < 0.5.0", true},
		{"0.4.0", true},
		{"^1.0", false},
		{"< 0.4.0", false},
	}
	for _, tt := range tests {
		cfg := &Config{RuntimeVersion: tt.constraint}
		err := cfg.CheckRuntime()
		if tt.ok {
			assert.NoError(t, err, tt.constraint)
		} else {
			assert.Error(t, err, tt.constraint)
		}
	}
}
