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

package sqlite

import (
	"sync"
	"time"

	"github.com/blinklabs-io/parlmembers/database/plugin"
)

const (
	DefaultDataDir       = ".parlmembers"
	DefaultDbFile        = "metadata.sqlite"
	DefaultBusyTimeoutMs = 5000
)

var (
	cmdlineOptions struct {
		dataDir       string
		dbFile        string
		busyTimeoutMs int
		vacuumOnClose bool
	}
	cmdlineOptionsMutex sync.RWMutex
)

func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions.dataDir = DefaultDataDir
	cmdlineOptions.dbFile = DefaultDbFile
	cmdlineOptions.busyTimeoutMs = DefaultBusyTimeoutMs
	cmdlineOptions.vacuumOnClose = true
}

func init() {
	initCmdlineOptions()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "sqlite",
			Description:        "SQLite entity tables",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "directory for the database file, empty for in-memory",
					DefaultValue: DefaultDataDir,
					Dest:         &(cmdlineOptions.dataDir),
				},
				{
					Name:         "db-file",
					Type:         plugin.PluginOptionTypeString,
					Description:  "database file name",
					DefaultValue: DefaultDbFile,
					Dest:         &(cmdlineOptions.dbFile),
				},
				{
					Name:         "busy-timeout-ms",
					Type:         plugin.PluginOptionTypeInt,
					Description:  "lock wait timeout in milliseconds",
					DefaultValue: DefaultBusyTimeoutMs,
					Dest:         &(cmdlineOptions.busyTimeoutMs),
				},
				{
					Name:         "vacuum-on-close",
					Type:         plugin.PluginOptionTypeBool,
					Description:  "reclaim free pages when closing",
					DefaultValue: true,
					Dest:         &(cmdlineOptions.vacuumOnClose),
				},
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	defer cmdlineOptionsMutex.RUnlock()
	return NewWithOptions(
		WithDataDir(cmdlineOptions.dataDir),
		WithDbFile(cmdlineOptions.dbFile),
		WithBusyTimeout(time.Duration(cmdlineOptions.busyTimeoutMs)*time.Millisecond),
		WithVacuumOnClose(cmdlineOptions.vacuumOnClose),
	)
}
