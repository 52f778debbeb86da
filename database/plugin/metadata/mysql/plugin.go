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

package mysql

import (
	"sync"

	"github.com/blinklabs-io/parlmembers/database/plugin"
)

const (
	DefaultHost      = "localhost"
	DefaultPort      = 3306
	DefaultUser      = "root"
	DefaultDatabase  = "parlmembers"
	DefaultLocation  = "UTC"
	DefaultCollation = "utf8mb4_unicode_ci"
)

var (
	cmdlineOptions struct {
		host           string
		user           string
		password       string
		database       string
		tls            string
		location       string
		collation      string
		dsn            string
		port           uint64
		maxConnections int
	}
	cmdlineOptionsMutex sync.RWMutex
)

func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions.host = DefaultHost
	cmdlineOptions.port = DefaultPort
	cmdlineOptions.user = DefaultUser
	cmdlineOptions.database = DefaultDatabase
	cmdlineOptions.location = DefaultLocation
	cmdlineOptions.collation = DefaultCollation
	cmdlineOptions.maxConnections = defaultMaxConnections
}

func init() {
	initCmdlineOptions()
	str := func(name, description, def string, dest *string) plugin.PluginOption {
		return plugin.PluginOption{
			Name:         name,
			Type:         plugin.PluginOptionTypeString,
			Description:  description,
			DefaultValue: def,
			Dest:         dest,
		}
	}
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "mysql",
			Description:        "MySQL entity tables",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				str("host", "server host", DefaultHost, &cmdlineOptions.host),
				{
					Name:         "port",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "server port",
					DefaultValue: uint64(DefaultPort),
					Dest:         &(cmdlineOptions.port),
				},
				str("user", "user name", DefaultUser, &cmdlineOptions.user),
				str("password", "password", "", &cmdlineOptions.password),
				str("database", "database name, created when missing", DefaultDatabase, &cmdlineOptions.database),
				str("tls", "tls parameter (true, false, skip-verify, preferred)", "", &cmdlineOptions.tls),
				str("location", "location for parsed DATE values", DefaultLocation, &cmdlineOptions.location),
				str("collation", "connection collation", DefaultCollation, &cmdlineOptions.collation),
				str("dsn", "full DSN, overrides the other connection options", "", &cmdlineOptions.dsn),
				{
					Name:         "max-connections",
					Type:         plugin.PluginOptionTypeInt,
					Description:  "maximum number of open connections",
					DefaultValue: defaultMaxConnections,
					Dest:         &(cmdlineOptions.maxConnections),
				},
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	defer cmdlineOptionsMutex.RUnlock()
	return NewWithOptions(
		WithHost(cmdlineOptions.host),
		WithPort(uint(cmdlineOptions.port)),
		WithUser(cmdlineOptions.user),
		WithPassword(cmdlineOptions.password),
		WithDatabase(cmdlineOptions.database),
		WithTLS(cmdlineOptions.tls),
		WithLocation(cmdlineOptions.location),
		WithCollation(cmdlineOptions.collation),
		WithDSN(cmdlineOptions.dsn),
		WithMaxConnections(cmdlineOptions.maxConnections),
	)
}
