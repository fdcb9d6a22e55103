package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024

	// envPrefix namespaces ragd environment variables, e.g.
	// RAGD_SERVER_PORT or RAGD_PROVIDERS_GEMINI_API_KEY.
	envPrefix = "RAGD_"
)

// Load reads configuration from a YAML file, then overrides with RAGD_*
// environment variables.
//
// Precedence (highest to lowest):
//  1. Environment variables (RAGD_SERVER_PORT, RAGD_STORE_BACKEND, ...)
//  2. YAML config file (default ~/.config/ragd/config.yaml)
//  3. Hardcoded defaults
//
// A missing config file is not an error; env vars and defaults still apply.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Defaults a zero value cannot express; file and env override them.
	if err := k.Set("telemetry.enabled", true); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "ragd", "config.yaml")
	}

	if _, err := os.Stat(configPath); err == nil {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// envKeyTransform maps RAGD_SECTION_FIELD_NAME to section.field_name. Only
// the first underscore becomes a section separator; the rest stay in the
// field name, except the provider and store subsections which nest one
// level deeper (RAGD_PROVIDERS_GEMINI_API_KEY -> providers.gemini.api_key).
func envKeyTransform(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	section, rest := parts[0], parts[1]

	if section == "providers" || section == "store" {
		sub := strings.SplitN(rest, "_", 2)
		if len(sub) == 2 {
			return section + "." + sub[0] + "." + sub[1]
		}
	}
	if section == "rag" {
		if after, found := strings.CutPrefix(rest, "chunking_"); found {
			return "rag.chunking." + after
		}
	}
	return section + "." + rest
}

// readConfigFile reads the file through a single descriptor, rejecting
// group or world readable files and anything over the size cap.
func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	if info.Mode().Perm()&0o077 != 0 {
		return nil, fmt.Errorf("config file %s must not be group or world accessible (want 0600)", path)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}
