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
	"maps"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/blinklabs-io/numbat/config/genesis"
	"github.com/blinklabs-io/numbat/database/plugin"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "numbat.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultBlockInterval   = "5s"
	DefaultNetwork         = "devnet"
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

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	MetadataPlugin  string `yaml:"metadataPlugin"  envconfig:"DATABASE_METADATA_PLUGIN"`
	BlobPlugin      string `yaml:"blobPlugin"      envconfig:"DATABASE_BLOB_PLUGIN"`
	DatabasePath    string `yaml:"databasePath"                                     split_words:"true"`
	// Network must match the genesis when set
	Network         string `yaml:"network"`
	GenesisFile     string `yaml:"genesisFile"                                      split_words:"true"`
	BindAddr        string `yaml:"bindAddr"                                         split_words:"true"`
	BlockInterval   string `yaml:"blockInterval"                                    split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout"                                  split_words:"true"`
	// Zero disables the listener
	ApiPort     uint `yaml:"apiPort"     split_words:"true"`
	MetricsPort uint `yaml:"metricsPort" split_words:"true"`
	// DevMode enables the chain clock endpoint of the API
	DevMode       bool `yaml:"devMode"       split_words:"true"`
	Tracing       bool `yaml:"tracing"`
	TracingStdout bool `yaml:"tracingStdout" split_words:"true"`
}

var globalConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		BindAddr:        "0.0.0.0",
		DatabasePath:    ".numbat",
		ApiPort:         8080,
		MetricsPort:     12798,
		BlobPlugin:      DefaultBlobPlugin,
		MetadataPlugin:  DefaultMetadataPlugin,
		BlockInterval:   DefaultBlockInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadConfig reads configFile, or the first of ~/.numbat/numbat.yaml and
// /etc/numbat/numbat.yaml that exists, then applies NUMBAT_* environment
// variables on top
func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.numbat/numbat.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".numbat", "numbat.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/numbat/numbat.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/numbat/numbat.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		if err := loadConfigFile(configFile); err != nil {
			return nil, err
		}
	}
	// Process environment variables
	err := envconfig.Process("numbat", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Process plugin environment variables
	err = plugin.ProcessEnvVars()
	if err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}

	if err := globalConfig.Validate(); err != nil {
		return nil, err
	}
	return globalConfig, nil
}

func loadConfigFile(configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	err = yaml.Unmarshal(buf, &tempCfg)
	if err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	// If config section exists, use it for main config
	if tempCfg.Config != nil {
		// Overlay config values onto existing defaults
		configBytes, err := yaml.Marshal(tempCfg.Config)
		if err != nil {
			return fmt.Errorf("error re-marshalling config: %w", err)
		}
		err = yaml.Unmarshal(configBytes, globalConfig)
		if err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else {
		err = yaml.Unmarshal(buf, globalConfig)
		if err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Process plugin configurations
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Blob != nil {
		pluginConfig["blob"] = tempCfg.Blob
	}
	if tempCfg.Metadata != nil {
		pluginConfig["metadata"] = tempCfg.Metadata
	}
	// Handle database section if present
	if tempCfg.Database != nil {
		if tempCfg.Database.Blob != nil {
			name, cfg := splitPluginSection("blob", tempCfg.Database.Blob)
			if name != "" {
				globalConfig.BlobPlugin = name
			}
			mergePluginConfig(pluginConfig, "blob", cfg)
		}
		if tempCfg.Database.Metadata != nil {
			name, cfg := splitPluginSection("metadata", tempCfg.Database.Metadata)
			if name != "" {
				globalConfig.MetadataPlugin = name
			}
			mergePluginConfig(pluginConfig, "metadata", cfg)
		}
	}
	if len(pluginConfig) > 0 {
		err = plugin.ProcessConfig(pluginConfig)
		if err != nil {
			return fmt.Errorf(
				"error processing plugin config: %w",
				err,
			)
		}
	}
	return nil
}

// splitPluginSection separates the selected plugin name from the per-plugin
// option maps of a database section
func splitPluginSection(
	sectionName string,
	section map[string]any,
) (string, map[string]map[string]any) {
	var name string
	ret := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			if pluginName, ok := v.(string); ok {
				name = pluginName
			}
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			ret[k] = val
		case map[any]any:
			// Convert map[any]any to map[string]any
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			ret[k] = stringAnyMap
		default:
			// Log skipped non-map config entries
			fmt.Fprintf(os.Stderr, "warning: skipping %s config entry %q: expected map, got %T\n", sectionName, k, v)
		}
	}
	return name, ret
}

// mergePluginConfig merges with existing plugin config instead of
// overwriting it
func mergePluginConfig(
	pluginConfig map[string]map[string]map[string]any,
	pluginType string,
	cfg map[string]map[string]any,
) {
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = cfg
		return
	}
	maps.Copy(pluginConfig[pluginType], cfg)
}

// Validate checks the values that are parsed lazily
func (c *Config) Validate() error {
	if c.GenesisFile == "" && c.Network != "" && c.Network != DefaultNetwork {
		return fmt.Errorf(
			"no genesis file configured for network %q",
			c.Network,
		)
	}
	if _, err := c.BlockIntervalDuration(); err != nil {
		return err
	}
	if _, err := c.ShutdownTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// BlockIntervalDuration returns the configured block interval. An empty
// value or "0" disables the block producer
func (c *Config) BlockIntervalDuration() (time.Duration, error) {
	if c.BlockInterval == "" || c.BlockInterval == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.BlockInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid blockInterval %q: %w", c.BlockInterval, err)
	}
	if d < time.Second {
		return 0, fmt.Errorf("invalid blockInterval %q: must be at least 1s", c.BlockInterval)
	}
	return d, nil
}

// ShutdownTimeoutDuration returns the configured graceful shutdown timeout
func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return time.ParseDuration(DefaultShutdownTimeout)
	}
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdownTimeout %q: %w", c.ShutdownTimeout, err)
	}
	if d < 0 {
		return 0, errors.New("shutdownTimeout must not be negative")
	}
	return d, nil
}

// ApiListenAddress returns the API server address, or an empty string when
// the API is disabled
func (c *Config) ApiListenAddress() string {
	if c.ApiPort == 0 {
		return ""
	}
	return net.JoinHostPort(c.BindAddr, strconv.FormatUint(uint64(c.ApiPort), 10))
}

// LoadGenesis reads the configured genesis file. Without one the built-in
// devnet genesis is used
func (c *Config) LoadGenesis() (*genesis.Genesis, error) {
	if c.GenesisFile != "" {
		g, err := genesis.NewGenesisFromFile(c.GenesisFile)
		if err != nil {
			return nil, err
		}
		if c.Network != "" && g.Network != c.Network {
			return nil, fmt.Errorf(
				"genesis file %s is for network %q, not %q",
				c.GenesisFile,
				g.Network,
				c.Network,
			)
		}
		return g, nil
	}
	if c.Network == "" || c.Network == DefaultNetwork {
		return genesis.Devnet()
	}
	return nil, fmt.Errorf("no genesis file configured for network %q", c.Network)
}
