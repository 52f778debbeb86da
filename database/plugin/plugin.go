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
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type Plugin interface {
	Start() error
	Stop() error
}

// Instrumented is implemented by plugins that accept a logger and metrics
// registry before they are started
type Instrumented interface {
	SetLogger(*slog.Logger)
	SetPromRegistry(prometheus.Registerer)
}

// ErrorPlugin is a plugin that always returns an error on Start()
type ErrorPlugin struct {
	Err error
}

func (e *ErrorPlugin) Start() error {
	return e.Err
}

func (e *ErrorPlugin) Stop() error {
	return nil
}

// NewErrorPlugin creates a new error plugin that returns the given error on Start()
func NewErrorPlugin(err error) Plugin {
	return &ErrorPlugin{Err: err}
}

// StartPlugin gets a plugin from the registry and starts it. The logger and
// registry are passed to plugins implementing Instrumented and may be nil.
func StartPlugin(
	pluginType PluginType,
	pluginName string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (Plugin, error) {
	p := GetPlugin(pluginType, pluginName)
	if p == nil {
		return nil, fmt.Errorf(
			"%s plugin '%s' not found",
			PluginTypeName(pluginType),
			pluginName,
		)
	}
	if inst, ok := p.(Instrumented); ok {
		if logger != nil {
			inst.SetLogger(logger)
		}
		if promRegistry != nil {
			inst.SetPromRegistry(promRegistry)
		}
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf(
			"failed to start %s plugin '%s': %w",
			PluginTypeName(pluginType),
			pluginName,
			err,
		)
	}
	return p, nil
}

// SetPluginOption sets a named option of a registered plugin. Unknown
// option names are ignored so that callers can set options such as data-dir
// on any implementation. It must be called before the plugin is created.
func SetPluginOption(
	pluginType PluginType,
	pluginName string,
	optionName string,
	value any,
) error {
	for i := range pluginEntries {
		p := &pluginEntries[i]
		if p.Type != pluginType || p.Name != pluginName {
			continue
		}
		for _, opt := range p.Options {
			if opt.Name == optionName {
				return setOption(opt, value)
			}
		}
		return nil
	}
	return fmt.Errorf(
		"plugin %s of type %s not found",
		pluginName,
		PluginTypeName(pluginType),
	)
}

func setOption(opt PluginOption, value any) error {
	switch opt.Type {
	case PluginOptionTypeString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected string", opt.Name)
		}
		return assign(opt, v)
	case PluginOptionTypeBool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected bool", opt.Name)
		}
		return assign(opt, v)
	case PluginOptionTypeInt:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("invalid type for option %s: expected int", opt.Name)
		}
		return assign(opt, v)
	case PluginOptionTypeUint:
		switch v := value.(type) {
		case uint64:
			return assign(opt, v)
		case int:
			if v < 0 {
				return fmt.Errorf("invalid value for option %s: negative int", opt.Name)
			}
			return assign(opt, uint64(v))
		default:
			return fmt.Errorf("invalid type for option %s: expected uint64 or int", opt.Name)
		}
	default:
		return fmt.Errorf(
			"unknown plugin option type %d for option %s",
			opt.Type,
			opt.Name,
		)
	}
}

func assign[T any](opt PluginOption, value T) error {
	dest, ok := opt.Dest.(*T)
	if !ok || dest == nil {
		return fmt.Errorf(
			"invalid destination for option %s: expected %T",
			opt.Name,
			dest,
		)
	}
	*dest = value
	return nil
}
