// Package config loads the YAML configuration of the bufmgr tool.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bietkhonhungvandi212/bufmgr/internal/logger"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

// Config is the top-level configuration file.
//
//	pool:
//	  buffer_pool_size: 64
//	logger:
//	  level: debug
//	data_file: ./bufmgr.dat
//	initial_pages: 16
//	metrics_addr: ":9090"
type Config struct {
	Pool         util.Options  `yaml:"pool"`
	Logger       logger.Config `yaml:"logger"`
	DataFile     string        `yaml:"data_file"`
	InitialPages int           `yaml:"initial_pages"`
	// MetricsAddr serves /metrics when set.
	MetricsAddr string `yaml:"metrics_addr"`
}

func Default() Config {
	return Config{
		Pool:         util.DefaultOptions(),
		Logger:       logger.DefaultConfig(),
		DataFile:     "bufmgr.dat",
		InitialPages: 16,
	}
}

// Load reads path over the defaults, so omitted keys keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Pool.BufferPoolSize <= 0 {
		errs = append(errs, fmt.Errorf("pool.buffer_pool_size %d: %w", c.Pool.BufferPoolSize, util.ErrInvalidPoolSize))
	}
	if c.InitialPages <= 0 {
		errs = append(errs, fmt.Errorf("initial_pages %d: %w", c.InitialPages, util.ErrInvalidInitialPages))
	}
	if c.DataFile == "" {
		errs = append(errs, errors.New("data_file is required"))
	}
	return errors.Join(errs...)
}
