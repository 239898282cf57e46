package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"spantable/internal/config"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	loaded, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"), nil)
	require.Error(t, err)
	assert.Empty(t, loaded.File)

	loaded, err = config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), loaded.Config)
}

func TestLoad_Layering(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "spantable.yaml", `
selector: "#main"
table_index: 2
format: csv
null_text: "-"
timeout_seconds: 10
headers:
  Accept-Language: en
`)
	t.Setenv("SPANTABLE_FORMAT", "json")
	t.Setenv("SPANTABLE_PARALLEL", "9")

	flags := pflag.NewFlagSet("dump", pflag.ContinueOnError)
	flags.String("format", "text", "")
	flags.Int("table", 0, "")
	flags.String("null", "", "")
	flags.Int("timeout", 45, "")
	require.NoError(t, flags.Parse([]string{"--table", "3", "--null", "NULL"}))

	loaded, err := config.Load(path, flags)
	require.NoError(t, err)
	cfg := loaded.Config

	assert.Equal(t, path, loaded.File)
	assert.Equal(t, "#main", cfg.Selector)
	assert.Equal(t, "json", cfg.Format, "env overrides file")
	assert.Equal(t, 9, cfg.Parallel)
	assert.Equal(t, 3, cfg.TableIndex, "changed flag overrides file")
	assert.Equal(t, "NULL", cfg.NullText)
	assert.Equal(t, 10, cfg.TimeoutSeconds, "unchanged flag keeps file value")
	assert.Equal(t, "auto", cfg.Mode, "default survives")
	assert.Equal(t, map[string]string{"Accept-Language": "en"}, cfg.Headers)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "spantable.yml", "format: [unclosed")
	_, err := config.Load(path, nil)
	assert.ErrorContains(t, err, "error reading config file")
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := config.Defaults()
	cfg.Selector = "table.wikitable"
	cfg.NullText = "~"

	data, err := config.Marshal(cfg)
	require.NoError(t, err)

	var back config.Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, cfg, back)

	path := writeConfig(t, t.TempDir(), "spantable.yaml", string(data))
	loaded, err := config.Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded.Config)
}

func TestFindConfigFile(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	want := writeConfig(t, second, "spantable.yml", "format: yaml\n")

	assert.Equal(t, want, config.FindConfigFile([]string{first, second}))
	assert.Empty(t, config.FindConfigFile([]string{first}))
}

func TestSearchDirs_Unique(t *testing.T) {
	dirs := config.SearchDirs()
	require.NotEmpty(t, dirs)
	assert.Equal(t, ".", dirs[0])
	seen := map[string]bool{}
	for _, d := range dirs {
		assert.False(t, seen[d], "duplicate dir %s", d)
		seen[d] = true
	}
}
