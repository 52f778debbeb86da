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
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

const envVarPrefix = "PARLMEMBERS"

func flagName(p PluginEntry, opt PluginOption) string {
	return fmt.Sprintf("%s-%s-%s", PluginTypeName(p.Type), p.Name, opt.Name)
}

func envVarName(p PluginEntry, opt PluginOption) string {
	if opt.CustomEnvVar != "" {
		return opt.CustomEnvVar
	}
	name := strings.Join(
		[]string{envVarPrefix, PluginTypeName(p.Type), p.Name, opt.Name},
		"_",
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// PopulateCmdlineOptions adds a flag for every option of every registered
// plugin, named <type>-<plugin>-<option>
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			if err := addFlag(fs, p, opt); err != nil {
				return err
			}
		}
	}
	return nil
}

func addFlag(fs *pflag.FlagSet, p PluginEntry, opt PluginOption) error {
	name := flagName(p, opt)
	switch opt.Type {
	case PluginOptionTypeString:
		dest, ok := opt.Dest.(*string)
		def, defOk := opt.DefaultValue.(string)
		if !ok || !defOk {
			return fmt.Errorf("option %s: expected string destination and default", name)
		}
		fs.StringVar(dest, name, def, opt.Description)
	case PluginOptionTypeBool:
		dest, ok := opt.Dest.(*bool)
		def, defOk := opt.DefaultValue.(bool)
		if !ok || !defOk {
			return fmt.Errorf("option %s: expected bool destination and default", name)
		}
		fs.BoolVar(dest, name, def, opt.Description)
	case PluginOptionTypeInt:
		dest, ok := opt.Dest.(*int)
		def, defOk := opt.DefaultValue.(int)
		if !ok || !defOk {
			return fmt.Errorf("option %s: expected int destination and default", name)
		}
		fs.IntVar(dest, name, def, opt.Description)
	case PluginOptionTypeUint:
		dest, ok := opt.Dest.(*uint64)
		def, defOk := opt.DefaultValue.(uint64)
		if !ok || !defOk {
			return fmt.Errorf("option %s: expected uint64 destination and default", name)
		}
		fs.Uint64Var(dest, name, def, opt.Description)
	default:
		return fmt.Errorf("option %s: unknown option type %d", name, opt.Type)
	}
	return nil
}

// ProcessConfig applies plugin options from the config file. The map is
// keyed by plugin type, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for typeName, plugins := range pluginConfig {
		pluginType, ok := pluginTypeByName(typeName)
		if !ok {
			return fmt.Errorf("unknown plugin type %q", typeName)
		}
		for pluginName, options := range plugins {
			for optName, value := range options {
				if err := SetPluginOption(pluginType, pluginName, optName, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin options from PARLMEMBERS_<TYPE>_<PLUGIN>_<OPTION>
// environment variables
func ProcessEnvVars() error {
	var err error
	for _, p := range pluginEntries {
		for _, opt := range p.Options {
			raw, ok := os.LookupEnv(envVarName(p, opt))
			if !ok {
				continue
			}
			value, parseErr := parseOptionValue(opt.Type, raw)
			if parseErr != nil {
				err = errors.Join(
					err,
					fmt.Errorf("%s: %w", envVarName(p, opt), parseErr),
				)
				continue
			}
			err = errors.Join(err, SetPluginOption(p.Type, p.Name, opt.Name, value))
		}
	}
	return err
}

func parseOptionValue(optType PluginOptionType, raw string) (any, error) {
	switch optType {
	case PluginOptionTypeString:
		return raw, nil
	case PluginOptionTypeBool:
		return strconv.ParseBool(raw)
	case PluginOptionTypeInt:
		return strconv.Atoi(raw)
	case PluginOptionTypeUint:
		return strconv.ParseUint(raw, 10, 64)
	default:
		return nil, fmt.Errorf("unknown option type %d", optType)
	}
}
