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
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type MysqlOptionFunc func(*MetadataStoreMysql)

func WithLogger(logger *slog.Logger) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.logger = logger
	}
}

func WithPromRegistry(
	registry prometheus.Registerer,
) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.promRegistry = registry
	}
}

func WithHost(host string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.host = host
	}
}

func WithPort(port uint) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.port = port
	}
}

func WithUser(user string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.user = user
	}
}

func WithPassword(password string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.password = password
	}
}

// WithDatabase names the database holding the entity tables. It is created
// when missing.
func WithDatabase(database string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.database = database
	}
}

// WithTLS sets the driver tls parameter (true, false, skip-verify, preferred)
func WithTLS(tls string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.tls = tls
	}
}

// WithLocation sets the location used to parse DATE and DATETIME values
func WithLocation(location string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.location = location
	}
}

// WithCollation sets the connection collation. Member names need a utf8mb4
// collation.
func WithCollation(collation string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.collation = collation
	}
}

func WithDSN(dsn string) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.dsn = dsn
	}
}

func WithMaxConnections(maxConnections int) MysqlOptionFunc {
	return func(m *MetadataStoreMysql) {
		m.maxConnections = maxConnections
	}
}
