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
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/blinklabs-io/parlmembers/database/plugin/metadata"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

const defaultMaxConnections = 100

// MetadataStorePostgres stores the entity tables in Postgres
type MetadataStorePostgres struct {
	metadata.Queries
	promRegistry prometheus.Registerer
	logger       *slog.Logger

	host           string
	user           string
	password       string
	database       string
	schema         string
	sslMode        string
	timeZone       string
	dsn            string
	port           uint
	maxConnections int
}

// NewWithOptions creates a new database with options. The connection is
// opened by Start.
func NewWithOptions(opts ...PostgresOptionFunc) *MetadataStorePostgres {
	db := &MetadataStorePostgres{}
	for _, opt := range opts {
		opt(db)
	}
	// Set defaults after options are applied
	if db.host == "" {
		db.host = DefaultHost
	}
	if db.port == 0 {
		db.port = DefaultPort
	}
	if db.user == "" {
		db.user = DefaultUser
	}
	if db.database == "" {
		db.database = DefaultDatabase
	}
	if db.sslMode == "" {
		db.sslMode = DefaultSSLMode
	}
	if db.timeZone == "" {
		db.timeZone = DefaultTimeZone
	}
	if db.maxConnections <= 0 {
		db.maxConnections = defaultMaxConnections
	}
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db
}

func (d *MetadataStorePostgres) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *MetadataStorePostgres) SetPromRegistry(registry prometheus.Registerer) {
	d.promRegistry = registry
}

// buildDSN returns the configured DSN, or a keyword/value connection string
// assembled from the individual options
func (d *MetadataStorePostgres) buildDSN() string {
	if dsn := strings.TrimSpace(d.dsn); dsn != "" {
		return dsn
	}
	parts := []string{
		"host=" + d.host,
		"user=" + d.user,
		"password=" + d.password,
		"dbname=" + d.database,
		"port=" + strconv.FormatUint(uint64(d.port), 10),
		"sslmode=" + d.sslMode,
	}
	if d.timeZone != "" {
		parts = append(parts, "TimeZone="+d.timeZone)
	}
	if d.schema != "" {
		parts = append(parts, "search_path="+d.schema)
	}
	return strings.Join(parts, " ")
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Start implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Start() error {
	db, err := gorm.Open(
		postgres.Open(d.buildDSN()),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		},
	)
	if err != nil {
		return err
	}
	d.logger.Info(
		"connected to postgres metadata store",
		"component", "database",
		"host", d.host,
		"port", d.port,
		"database", d.database,
		"schema", d.schema,
	)
	if d.schema != "" && strings.TrimSpace(d.dsn) == "" {
		createSchema := "CREATE SCHEMA IF NOT EXISTS " + quoteIdentifier(d.schema)
		if err := db.Exec(createSchema).Error; err != nil {
			return fmt.Errorf("create schema %s: %w", d.schema, err)
		}
	}
	d.Queries = metadata.NewQueries(db)
	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(d.maxConnections)
	sqlDB.SetConnMaxLifetime(time.Hour)
	// Configure tracing for GORM
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		d.logger.Debug(
			fmt.Sprintf("creating table: %#v", model),
			"component", "database",
		)
		if err := db.AutoMigrate(model); err != nil {
			return err
		}
	}
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Stop() error {
	return d.Close()
}

// Close gets the database handle from our MetadataStore and closes it
func (d *MetadataStorePostgres) Close() error {
	// Guard against nil DB handle (e.g., if Start() failed or was never called)
	if d.DB() == nil {
		return nil
	}
	db, err := d.DB().DB()
	if err != nil {
		return err
	}
	return db.Close()
}
