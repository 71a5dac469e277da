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

package plugin

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

// EnvPrefix is prepended to generated plugin environment variable names
const EnvPrefix = "NUMBAT_DATABASE"

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// PluginContext carries the shared facilities handed to a plugin when it is
// instantiated
type PluginContext struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
}

// logger returns the configured logger or one that discards everything
func (c PluginContext) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c.Logger
}

type PluginEntry struct {
	NewFromOptionsFunc func(PluginContext) Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	Type         PluginOptionType
}

var pluginEntries []PluginEntry

// Register adds a plugin to the registry. A later registration with the same
// type and name replaces the earlier one
func Register(pluginEntry PluginEntry) {
	for i, p := range pluginEntries {
		if p.Type == pluginEntry.Type && p.Name == pluginEntry.Name {
			pluginEntries[i] = pluginEntry
			return
		}
	}
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registry entries of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin instantiates the named plugin with a discard logger and no
// metrics registry. It returns nil if the plugin is not registered
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	return getPluginWithContext(pluginType, pluginName, PluginContext{})
}

func getPluginWithContext(
	pluginType PluginType,
	pluginName string,
	pctx PluginContext,
) Plugin {
	for _, p := range pluginEntries {
		if p.Type != pluginType || p.Name != pluginName {
			continue
		}
		if p.NewFromOptionsFunc == nil {
			return nil
		}
		pctx.Logger = pctx.logger()
		return p.NewFromOptionsFunc(pctx)
	}
	return nil
}

// optionFlagName returns the command line flag name for a plugin option,
// for example "blob-badger-data-dir"
func optionFlagName(p PluginEntry, opt PluginOption) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(p.Type),
		p.Name,
		opt.Name,
	)
}

// optionEnvName returns the environment variable name for a plugin option,
// for example NUMBAT_DATABASE_BLOB_BADGER_DATA_DIR
func optionEnvName(p PluginEntry, opt PluginOption) string {
	name := strings.Join(
		[]string{
			EnvPrefix,
			PluginTypeName(p.Type),
			p.Name,
			opt.Name,
		},
		"_",
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// PopulateCmdlineOptions adds a flag for every registered plugin option
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			flagName := optionFlagName(p, opt)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				if !ok {
					return fmt.Errorf("invalid destination type for option %s", flagName)
				}
				def, _ := opt.DefaultValue.(string)
				fs.StringVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				if !ok {
					return fmt.Errorf("invalid destination type for option %s", flagName)
				}
				def, _ := opt.DefaultValue.(bool)
				fs.BoolVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeInt:
				dest, ok := opt.Dest.(*int)
				if !ok {
					return fmt.Errorf("invalid destination type for option %s", flagName)
				}
				def, _ := opt.DefaultValue.(int)
				fs.IntVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				if !ok {
					return fmt.Errorf("invalid destination type for option %s", flagName)
				}
				def, _ := opt.DefaultValue.(uint64)
				fs.Uint64Var(dest, flagName, def, opt.Description)
			default:
				return fmt.Errorf("unknown plugin option type %d for option %s", opt.Type, flagName)
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin options from environment variables
func ProcessEnvVars() error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			val, ok := os.LookupEnv(optionEnvName(p, opt))
			if !ok {
				continue
			}
			parsed, err := parseOptionString(opt, val)
			if err != nil {
				return fmt.Errorf("%s: %w", optionEnvName(p, opt), err)
			}
			if err := SetPluginOption(p.Type, p.Name, opt.Name, parsed); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin options from a parsed config file. The map is
// keyed by plugin type name, then plugin name, then option name
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for _, p := range pluginEntries {
		typeConfig, ok := pluginConfig[PluginTypeName(p.Type)]
		if !ok {
			continue
		}
		optConfig, ok := typeConfig[p.Name]
		if !ok {
			continue
		}
		for _, opt := range p.Options {
			val, ok := optConfig[opt.Name]
			if !ok {
				continue
			}
			if err := SetPluginOption(p.Type, p.Name, opt.Name, normalizeConfigValue(opt, val)); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseOptionString(opt PluginOption, val string) (any, error) {
	switch opt.Type {
	case PluginOptionTypeString:
		return val, nil
	case PluginOptionTypeBool:
		return strconv.ParseBool(val)
	case PluginOptionTypeInt:
		return strconv.Atoi(val)
	case PluginOptionTypeUint:
		return strconv.ParseUint(val, 10, 64)
	default:
		return nil, fmt.Errorf("unknown plugin option type %d", opt.Type)
	}
}

// normalizeConfigValue converts the numeric types produced by the YAML
// decoder into the types expected by SetPluginOption
func normalizeConfigValue(opt PluginOption, val any) any {
	switch opt.Type {
	case PluginOptionTypeUint:
		switch v := val.(type) {
		case int:
			if v >= 0 {
				return uint64(v)
			}
		case uint:
			return uint64(v)
		case int64:
			if v >= 0 {
				return uint64(v)
			}
		}
	case PluginOptionTypeInt:
		if v, ok := val.(int64); ok {
			return int(v)
		}
	case PluginOptionTypeString:
		if s, ok := val.(fmt.Stringer); ok {
			return s.String()
		}
	}
	return val
}
