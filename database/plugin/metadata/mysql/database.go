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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/blinklabs-io/parlmembers/database/plugin/metadata"
	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

const (
	defaultMaxConnections = 100
	// ER_BAD_DB_ERROR
	errUnknownDatabase = 1049
)

// MetadataStoreMysql stores the entity tables in MySQL
type MetadataStoreMysql struct {
	metadata.Queries
	promRegistry prometheus.Registerer
	logger       *slog.Logger

	host           string
	user           string
	password       string
	database       string
	tls            string
	location       string
	collation      string
	dsn            string
	port           uint
	maxConnections int
}

// NewWithOptions creates a new database with options. The connection is
// opened by Start.
func NewWithOptions(opts ...MysqlOptionFunc) *MetadataStoreMysql {
	db := &MetadataStoreMysql{}
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
	if db.location == "" {
		db.location = DefaultLocation
	}
	if db.collation == "" {
		db.collation = DefaultCollation
	}
	if db.maxConnections <= 0 {
		db.maxConnections = defaultMaxConnections
	}
	if db.logger == nil {
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db
}

func (d *MetadataStoreMysql) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *MetadataStoreMysql) SetPromRegistry(registry prometheus.Registerer) {
	d.promRegistry = registry
}

// buildDSN returns the configured DSN, or one assembled from the
// individual connection options
func (d *MetadataStoreMysql) buildDSN() string {
	if dsn := strings.TrimSpace(d.dsn); dsn != "" {
		return dsn
	}
	cfg := mysql.NewConfig()
	cfg.User = d.user
	cfg.Passwd = d.password
	cfg.Net = "tcp"
	cfg.Addr = d.host + ":" + strconv.FormatUint(uint64(d.port), 10)
	cfg.DBName = d.database
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	cfg.Collation = d.collation
	loc, err := time.LoadLocation(d.location)
	if err != nil {
		loc = time.UTC
	}
	cfg.Loc = loc
	if d.tls != "" {
		cfg.TLSConfig = d.tls
	}
	return cfg.FormatDSN()
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	}
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Start() error {
	dsn := d.buildDSN()
	logDatabase := d.database
	if parsed, err := mysql.ParseDSN(dsn); err == nil {
		logDatabase = parsed.DBName
	}
	db, err := gorm.Open(gormmysql.Open(dsn), gormConfig())
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if !errors.As(err, &mysqlErr) || mysqlErr.Number != errUnknownDatabase {
			return err
		}
		if createErr := ensureDatabaseExists(dsn); createErr != nil {
			return errors.Join(err, createErr)
		}
		db, err = gorm.Open(gormmysql.Open(dsn), gormConfig())
		if err != nil {
			return err
		}
	}
	d.logger.Info(
		"connected to mysql metadata store",
		"component", "database",
		"host", d.host,
		"port", d.port,
		"database", logDatabase,
	)
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

// ensureDatabaseExists connects without a schema and creates the one named
// in dsn
func ensureDatabaseExists(dsn string) error {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return err
	}
	dbName := cfg.DBName
	if dbName == "" {
		return errors.New("mysql dsn does not name a database")
	}
	adminDsn, err := stripDatabaseFromDSN(dsn)
	if err != nil {
		return err
	}
	adminDb, err := gorm.Open(gormmysql.Open(adminDsn), gormConfig())
	if err != nil {
		return err
	}
	sqlAdminDb, err := adminDb.DB()
	if err != nil {
		return err
	}
	defer sqlAdminDb.Close()
	return adminDb.Exec(
		fmt.Sprintf(
			"CREATE DATABASE IF NOT EXISTS `%s`",
			strings.ReplaceAll(dbName, "`", "``"),
		),
	).Error
}

func stripDatabaseFromDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.DBName = ""
	return cfg.FormatDSN(), nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

// Close gets the database handle from our MetadataStore and closes it
func (d *MetadataStoreMysql) Close() error {
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
