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
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type PostgresOptionFunc func(*MetadataStorePostgres)

func WithLogger(logger *slog.Logger) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.logger = logger
	}
}

func WithPromRegistry(
	registry prometheus.Registerer,
) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.promRegistry = registry
	}
}

func WithHost(host string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.host = host
	}
}

func WithPort(port uint) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.port = port
	}
}

func WithUser(user string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.user = user
	}
}

func WithPassword(password string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.password = password
	}
}

func WithDatabase(database string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.database = database
	}
}

// WithSchema places the entity tables in a schema, which is created when
// missing. It is ignored when a DSN is given.
func WithSchema(schema string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.schema = schema
	}
}

func WithSSLMode(sslMode string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.sslMode = sslMode
	}
}

func WithTimeZone(timeZone string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.timeZone = timeZone
	}
}

// WithDSN sets a full connection string, which takes precedence over the
// individual connection options
func WithDSN(dsn string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.dsn = dsn
	}
}

// WithMaxConnections limits the size of the connection pool
func WithMaxConnections(maxConnections int) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.maxConnections = maxConnections
	}
}
