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

package postgres

import (
	"sync"

	"github.com/blinklabs-io/parlmembers/database/plugin"
)

const (
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultUser     = "parlmembers"
	DefaultDatabase = "parlmembers"
	DefaultSSLMode  = "disable"
	DefaultTimeZone = "UTC"
)

var (
	cmdlineOptions struct {
		host           string
		user           string
		password       string
		database       string
		schema         string
		sslMode        string
		timeZone       string
		dsn            string
		port           uint64
		maxConnections int
	}
	cmdlineOptionsMutex sync.RWMutex
)

// The password has no default
func initCmdlineOptions() {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions.host = DefaultHost
	cmdlineOptions.port = DefaultPort
	cmdlineOptions.user = DefaultUser
	cmdlineOptions.database = DefaultDatabase
	cmdlineOptions.sslMode = DefaultSSLMode
	cmdlineOptions.timeZone = DefaultTimeZone
	cmdlineOptions.maxConnections = defaultMaxConnections
}

func stringOption(name, description, def string, dest *string) plugin.PluginOption {
	return plugin.PluginOption{
		Name:         name,
		Type:         plugin.PluginOptionTypeString,
		Description:  description,
		DefaultValue: def,
		Dest:         dest,
	}
}

func init() {
	initCmdlineOptions()
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "postgres",
			Description:        "PostgreSQL entity tables",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				stringOption("host", "server host", DefaultHost, &cmdlineOptions.host),
				{
					Name:         "port",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "server port",
					DefaultValue: uint64(DefaultPort),
					Dest:         &(cmdlineOptions.port),
				},
				stringOption("user", "user name", DefaultUser, &cmdlineOptions.user),
				stringOption("password", "password (required)", "", &cmdlineOptions.password),
				stringOption("database", "database name", DefaultDatabase, &cmdlineOptions.database),
				stringOption("schema", "schema for the entity tables, created when missing", "", &cmdlineOptions.schema),
				stringOption("ssl-mode", "sslmode", DefaultSSLMode, &cmdlineOptions.sslMode),
				stringOption("timezone", "session TimeZone", DefaultTimeZone, &cmdlineOptions.timeZone),
				stringOption("dsn", "full connection string, overrides the other connection options", "", &cmdlineOptions.dsn),
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
		WithSchema(cmdlineOptions.schema),
		WithSSLMode(cmdlineOptions.sslMode),
		WithTimeZone(cmdlineOptions.timeZone),
		WithDSN(cmdlineOptions.dsn),
		WithMaxConnections(cmdlineOptions.maxConnections),
	)
}
