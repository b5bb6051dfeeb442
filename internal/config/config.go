// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "tinyspl.config"

const (
	DefaultShutdownTimeout   = "30s"
	DefaultApiPort           = 8080
	DefaultTreeMaxDepth      = 14
	DefaultTreeMaxBufferSize = 64

	envPrefix = "tinyspl"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DatabasePath      string `yaml:"databasePath"      split_words:"true"`
	BindAddr          string `yaml:"bindAddr"          split_words:"true"`
	ShutdownTimeout   string `yaml:"shutdownTimeout"   split_words:"true"`
	ApiPort           uint   `yaml:"apiPort"           split_words:"true"`
	MaxRequestsPerIp  int    `yaml:"maxRequestsPerIp"  split_words:"true"`
	TreeMaxDepth      int    `yaml:"treeMaxDepth"      split_words:"true"`
	TreeMaxBufferSize int    `yaml:"treeMaxBufferSize" split_words:"true"`
	Tracing           bool   `yaml:"tracing"`
	TracingStdout     bool   `yaml:"tracingStdout"     split_words:"true"`
}

// Default returns a config populated with the default values
func Default() *Config {
	return &Config{
		DatabasePath:      ".tinyspl",
		BindAddr:          "0.0.0.0",
		ShutdownTimeout:   DefaultShutdownTimeout,
		ApiPort:           DefaultApiPort,
		TreeMaxDepth:      DefaultTreeMaxDepth,
		TreeMaxBufferSize: DefaultTreeMaxBufferSize,
	}
}

var globalConfig = Default()

// LoadConfig reads the YAML config file and overlays the TINYSPL_*
// environment variables. With no file given, ~/.tinyspl/tinyspl.yaml and
// then /etc/tinyspl/tinyspl.yaml are tried
func LoadConfig(configFile string) (*Config, error) {
	cfg := Default()
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.tinyspl/tinyspl.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".tinyspl", "tinyspl.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/tinyspl/tinyspl.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/tinyspl/tinyspl.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	if c.TreeMaxDepth < 1 || c.TreeMaxDepth > 30 {
		return fmt.Errorf("invalid treeMaxDepth: %d", c.TreeMaxDepth)
	}
	if c.TreeMaxBufferSize < 1 {
		return fmt.Errorf("invalid treeMaxBufferSize: %d", c.TreeMaxBufferSize)
	}
	if c.MaxRequestsPerIp < 0 {
		return fmt.Errorf("invalid maxRequestsPerIp: %d", c.MaxRequestsPerIp)
	}
	if c.ApiPort > 65535 {
		return fmt.Errorf("invalid apiPort: %d", c.ApiPort)
	}
	return nil
}

// ShutdownTimeoutDuration parses ShutdownTimeout
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return 0, errors.New("shutdownTimeout is empty")
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout: %w", err)
	}
	return d, nil
}

func GetConfig() *Config {
	return globalConfig
}
