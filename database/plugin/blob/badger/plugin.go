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

package badger

import (
	"sync"
	"time"

	"github.com/blinklabs-io/parlmembers/database/plugin"
)

const (
	DefaultCacheSize         = 32 << 20
	DefaultCompression       = "zstd"
	DefaultGcIntervalMinutes = 60
	DefaultDataDir           = ".parlmembers"
)

var (
	cmdlineOptions struct {
		dataDir           string
		compression       string
		cacheSize         uint64
		gcIntervalMinutes uint64
		syncWrites        bool
	}
	cmdlineOptionsMutex sync.RWMutex
)

func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions.dataDir = DefaultDataDir
	cmdlineOptions.compression = DefaultCompression
	cmdlineOptions.cacheSize = DefaultCacheSize
	cmdlineOptions.gcIntervalMinutes = DefaultGcIntervalMinutes
	cmdlineOptions.syncWrites = true
}

func init() {
	initCmdlineOptions()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "badger",
			Description:        "BadgerDB local snapshot archive",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "archive directory, empty keeps snapshots in memory",
					DefaultValue: DefaultDataDir,
					Dest:         &(cmdlineOptions.dataDir),
				},
				{
					Name:         "compression",
					Type:         plugin.PluginOptionTypeString,
					Description:  "snapshot compression (none, snappy, zstd)",
					DefaultValue: DefaultCompression,
					Dest:         &(cmdlineOptions.compression),
				},
				{
					Name:         "cache-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "block cache size in bytes",
					DefaultValue: uint64(DefaultCacheSize),
					Dest:         &(cmdlineOptions.cacheSize),
				},
				{
					Name:         "gc-interval-minutes",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "value log compaction interval, 0 disables",
					DefaultValue: uint64(DefaultGcIntervalMinutes),
					Dest:         &(cmdlineOptions.gcIntervalMinutes),
				},
				{
					Name:         "sync-writes",
					Type:         plugin.PluginOptionTypeBool,
					Description:  "fsync each snapshot write",
					DefaultValue: true,
					Dest:         &(cmdlineOptions.syncWrites),
				},
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	defer cmdlineOptionsMutex.RUnlock()
	return New(
		WithDataDir(cmdlineOptions.dataDir),
		WithCompression(cmdlineOptions.compression),
		WithCacheSize(cmdlineOptions.cacheSize),
		WithGcInterval(time.Duration(cmdlineOptions.gcIntervalMinutes)*time.Minute), //nolint:gosec // configured interval
		WithSyncWrites(cmdlineOptions.syncWrites),
	)
}
