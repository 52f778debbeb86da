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

import "slices"

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

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

func pluginTypeByName(name string) (PluginType, bool) {
	switch name {
	case "blob":
		return PluginTypeBlob, true
	case "metadata":
		return PluginTypeMetadata, true
	default:
		return 0, false
	}
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
	// CustomEnvVar replaces the generated environment variable name
	CustomEnvVar string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

// pluginEntries is only written from package init functions
var pluginEntries []PluginEntry

// Register adds a plugin to the registry
func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugins of a type sorted by name
func GetPlugins(pluginType PluginType) []PluginEntry {
	var ret []PluginEntry
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	slices.SortFunc(ret, func(a, b PluginEntry) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return ret
}

// GetPlugin creates a new instance of the named plugin from its current
// options, or returns nil if there is no such plugin
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	for _, p := range pluginEntries {
		if p.Type == pluginType && p.Name == pluginName {
			return p.NewFromOptionsFunc()
		}
	}
	return nil
}
