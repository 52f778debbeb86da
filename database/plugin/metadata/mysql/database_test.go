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
	"testing"
	_ "time/tzdata"

	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	m := NewWithOptions()
	assert.Equal(t, "localhost", m.host)
	assert.Equal(t, uint(3306), m.port)
	assert.Equal(t, "root", m.user)
	assert.Equal(t, "parlmembers", m.database)
	assert.Equal(t, DefaultCollation, m.collation)
	assert.Equal(t, defaultMaxConnections, m.maxConnections)
	assert.NotNil(t, m.logger)
	require.NoError(t, m.Close())
}

func TestOptions(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithOptions(
		WithHost("db.local"),
		WithPort(3307),
		WithUser("etl"),
		WithPassword("secret"),
		WithDatabase("members"),
		WithTLS("skip-verify"),
		WithLocation("Europe/London"),
		WithCollation("utf8mb4_bin"),
		WithMaxConnections(5),
		WithPromRegistry(registry),
	)
	assert.Equal(t, registry, m.promRegistry)
	assert.Equal(t, 5, m.maxConnections)

	cfg, err := mysql.ParseDSN(m.buildDSN())
	require.NoError(t, err)
	assert.Equal(t, "etl", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "db.local:3307", cfg.Addr)
	assert.Equal(t, "members", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "skip-verify", cfg.TLSConfig)
	assert.Equal(t, "Europe/London", cfg.Loc.String())
	assert.Equal(t, "utf8mb4_bin", cfg.Collation)
}

func TestDSNOverrides(t *testing.T) {
	m := NewWithOptions(
		WithHost("ignored"),
		WithDSN(" etl:pw@tcp(db:3306)/members?parseTime=true "),
	)
	assert.Equal(t, "etl:pw@tcp(db:3306)/members?parseTime=true", m.buildDSN())
}

func TestStripDatabaseFromDSN(t *testing.T) {
	stripped, err := stripDatabaseFromDSN("etl:pw@tcp(db:3306)/members?parseTime=true")
	require.NoError(t, err)
	cfg, err := mysql.ParseDSN(stripped)
	require.NoError(t, err)
	assert.Empty(t, cfg.DBName)
	assert.Equal(t, "db:3306", cfg.Addr)
	assert.True(t, cfg.ParseTime)

	_, err = stripDatabaseFromDSN("not a dsn")
	require.Error(t, err)
}
