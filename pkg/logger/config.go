//go:build !logless

package logger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config is the YAML log settings file consumed by Setup.
type Config struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Setup reconfigures the global Log from a YAML settings file. A missing
// file leaves the defaults in place.
func Setup(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse log settings %s: %w", path, err)
	}

	if cfg.Level != "" {
		lvl, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return fmt.Errorf("log settings %s: %w", path, err)
		}
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.JSON {
		Log = zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
	}
	return nil
}
