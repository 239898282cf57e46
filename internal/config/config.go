package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	yamlv3 "gopkg.in/yaml.v3"
)

const EnvPrefix = "SPANTABLE_"

type Config struct {
	Source             string            `koanf:"source" yaml:"source,omitempty"`
	Selector           string            `koanf:"selector" yaml:"selector,omitempty"`
	Exclude            string            `koanf:"exclude" yaml:"exclude,omitempty"`
	TableIndex         int               `koanf:"table_index" yaml:"table_index"`
	All                bool              `koanf:"all" yaml:"all,omitempty"`
	Format             string            `koanf:"format" yaml:"format"`
	Section            string            `koanf:"section" yaml:"section"`
	NullText           string            `koanf:"null_text" yaml:"null_text"`
	OutDir             string            `koanf:"out_dir" yaml:"out_dir,omitempty"`
	Mode               string            `koanf:"mode" yaml:"mode"`
	TimeoutSeconds     int               `koanf:"timeout_seconds" yaml:"timeout_seconds"`
	UserAgent          string            `koanf:"user_agent" yaml:"user_agent"`
	WaitForSelector    string            `koanf:"wait_for" yaml:"wait_for,omitempty"`
	Headless           bool              `koanf:"headless" yaml:"headless"`
	CacheDir           string            `koanf:"cache_dir" yaml:"cache_dir,omitempty"`
	RateLimitPerSecond float64           `koanf:"rate_limit_per_second" yaml:"rate_limit_per_second,omitempty"`
	ProxyURL           string            `koanf:"proxy_url" yaml:"proxy_url,omitempty"`
	Headers            map[string]string `koanf:"headers" yaml:"headers,omitempty"`
	// Crawl settings for harvest
	Depth      int    `koanf:"depth" yaml:"depth"`
	MaxPages   int    `koanf:"max_pages" yaml:"max_pages"`
	Match      string `koanf:"match" yaml:"match,omitempty"`
	Sitemap    string `koanf:"sitemap" yaml:"sitemap,omitempty"`
	AllDomains bool   `koanf:"all_domains" yaml:"all_domains,omitempty"`
	// Fixture runner settings
	FixturesDir string `koanf:"fixtures_dir" yaml:"fixtures_dir"`
	Prefix      string `koanf:"prefix" yaml:"prefix,omitempty"`
	Skip        bool   `koanf:"skip" yaml:"skip"`
	Parallel    int    `koanf:"parallel" yaml:"parallel"`
	Verbose     bool   `koanf:"verbose" yaml:"verbose,omitempty"`
}

func Defaults() Config {
	return Config{
		Format:         "text",
		Section:        "all",
		Mode:           "auto",
		TimeoutSeconds: 45,
		UserAgent:      "spantable/1.0",
		Headless:       true,
		Depth:          2,
		MaxPages:       100,
		FixturesDir:    DefaultFixturesDir,
		Skip:           true,
		Parallel:       4,
	}
}

func defaultMap() map[string]any {
	d := Defaults()
	return map[string]any{
		"format":          d.Format,
		"section":         d.Section,
		"mode":            d.Mode,
		"timeout_seconds": d.TimeoutSeconds,
		"user_agent":      d.UserAgent,
		"headless":        d.Headless,
		"depth":           d.Depth,
		"max_pages":       d.MaxPages,
		"fixtures_dir":    d.FixturesDir,
		"skip":            d.Skip,
		"parallel":        d.Parallel,
	}
}

// flagKeys maps flag names whose config key differs from the snake-cased
// flag name.
var flagKeys = map[string]string{
	"table":      "table_index",
	"null":       "null_text",
	"timeout":    "timeout_seconds",
	"cache":      "cache_dir",
	"out":        "out_dir",
	"rate-limit": "rate_limit_per_second",
	"proxy":      "proxy_url",
	"loud":       "verbose",
}

// Loaded is a resolved configuration and the file it came from, if any.
type Loaded struct {
	Config
	File string
}

// Load layers defaults, the config file, SPANTABLE_* environment variables
// and explicitly set flags, in increasing priority. An empty path searches
// SearchDirs for spantable.yaml or spantable.yml. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (Loaded, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultMap(), "."), nil); err != nil {
		return Loaded{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := path
	if used == "" {
		used = FindConfigFile(SearchDirs())
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return Loaded{}, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// SPANTABLE_NULL_TEXT -> null_text
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Loaded{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return Loaded{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Loaded{}, fmt.Errorf("unable to decode config: %w", err)
	}
	return Loaded{Config: cfg, File: used}, nil
}

func Marshal(cfg Config) ([]byte, error) {
	return yamlv3.Marshal(cfg)
}
