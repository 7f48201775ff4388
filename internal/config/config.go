// Package config loads evaluator settings from an optional YAML file with
// DPEVAL_-prefixed environment variables layered on top.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the file/env-configurable surface of an evaluation pass. CLI
// flags override whatever is loaded here.
type Config struct {
	SourceDir    string `koanf:"source_dir"`
	FellForDPDir string `koanf:"fell_for_dp_dir"`
	AvoidedDPDir string `koanf:"avoided_dp_dir"`
	TargetDir    string `koanf:"target_dir"`
	OutputDir    string `koanf:"output_dir"`

	Workers int  `koanf:"workers"`
	Verbose bool `koanf:"verbose"`

	// Executor is the free-form option map handed to the script runner
	// (command, args, timeout).
	Executor map[string]any `koanf:"executor"`
}

const envPrefix = "DPEVAL_"

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist) and then overlays environment variables. A double
// underscore in an env var name descends one config level:
// DPEVAL_EXECUTOR__COMMAND sets executor.command.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	if !k.Exists("output_dir") {
		k.Set("output_dir", "reports")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
