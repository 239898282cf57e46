package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	ConfigFileName     = "spantable.yaml"
	ConfigFileNameAlt  = "spantable.yml"
	DefaultConfigDir   = "configs"
	DefaultFixturesDir = "testdata"
)

func DefaultConfigPath() string {
	return ConfigFileName
}

func SearchDirs() []string {
	dirs := []string{".", DefaultConfigDir}
	if home, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "spantable"))
	}
	return uniqueDirs(dirs)
}

// FindConfigFile returns the first spantable.yaml or spantable.yml found in
// dirs, or "".
func FindConfigFile(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

func uniqueDirs(dirs []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		trimmed := strings.TrimSpace(dir)
		if trimmed == "" {
			continue
		}
		normalized := strings.ToLower(filepath.Clean(trimmed))
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
