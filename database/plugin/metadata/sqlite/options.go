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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type SqliteOptionFunc func(*MetadataStoreSqlite)

func WithLogger(logger *slog.Logger) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.logger = logger
	}
}

func WithPromRegistry(
	registry prometheus.Registerer,
) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.promRegistry = registry
	}
}

// WithDataDir sets the directory holding the database file. An empty dir
// uses an in-memory database.
func WithDataDir(dataDir string) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.dataDir = dataDir
	}
}

// WithDbFile sets the database file name inside the data dir
func WithDbFile(name string) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.dbFile = name
	}
}

// WithBusyTimeout sets how long a write waits for a lock held by another
// process
func WithBusyTimeout(timeout time.Duration) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.busyTimeout = timeout
	}
}

// WithVacuumOnClose reclaims the pages freed by table replacement when the
// store is closed
func WithVacuumOnClose(enabled bool) SqliteOptionFunc {
	return func(m *MetadataStoreSqlite) {
		m.vacuumOnClose = enabled
	}
}
