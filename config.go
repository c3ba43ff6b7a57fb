package cma

import (
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds machine settings loadable from a TOML file, e.g.:
//
//	capacity = 65536
//	trace = true
type Config struct {
	// Capacity is the total memory size in words; 0 means DefaultCapacity.
	Capacity int `toml:"capacity"`

	// Trace logs every executed instruction through the standard logger.
	Trace bool `toml:"trace"`
}

// LoadConfig reads and validates a TOML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes and validates TOML config data.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Capacity < 0 {
		return nil, fmt.Errorf("invalid capacity %v", cfg.Capacity)
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	return &cfg, nil
}

// Options converts the config into machine options.
func (cfg Config) Options() Option {
	var opts []Option
	if cfg.Capacity != 0 {
		opts = append(opts, WithCapacity(cfg.Capacity))
	}
	if cfg.Trace {
		opts = append(opts, WithLogf(log.Printf))
	}
	return Options(opts...)
}
