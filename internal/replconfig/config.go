// Package replconfig loads the REPL's optional .noxrc.yaml: a prompt string
// and a history file path. Its absence is not an error — callers fall back
// to Default().
package replconfig

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// Config holds the handful of settings the REPL cares about.
type Config struct {
	Prompt  string `yaml:"prompt"`
	History string `yaml:"history"`
}

// Default returns the built-in fallback configuration.
func Default() Config {
	return Config{Prompt: ">> ", History: ""}
}

// Load reads path if non-empty, else $HOME/.noxrc.yaml if it exists, and
// merges any set fields over Default(). A missing file of either kind
// yields Default() with a nil error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		candidate := filepath.Join(home, ".noxrc.yaml")
		if _, err := os.Stat(candidate); err != nil {
			return cfg, nil
		}
		path = candidate
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var overrides Config
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return cfg, err
	}
	if overrides.Prompt != "" {
		cfg.Prompt = overrides.Prompt
	}
	if overrides.History != "" {
		cfg.History = overrides.History
	}
	return cfg, nil
}
