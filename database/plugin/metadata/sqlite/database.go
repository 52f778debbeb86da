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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/blinklabs-io/parlmembers/database/plugin/metadata"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// MetadataStoreSqlite is a SQLite-based implementation of the metadata store
type MetadataStoreSqlite struct {
	metadata.Queries
	promRegistry  prometheus.Registerer
	logger        *slog.Logger
	dataDir       string
	dbFile        string
	busyTimeout   time.Duration
	mu            sync.Mutex
	vacuumOnClose bool
	closed        bool
}

// New creates and starts a SQLite metadata store. Uses an in-memory database
// if dataDir is empty.
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreSqlite, error) {
	db := NewWithOptions(
		WithDataDir(dataDir),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
	if err := db.Start(); err != nil {
		return nil, err
	}
	return db, nil
}

// NewWithOptions creates a SQLite metadata store using options. The
// database is opened by Start.
func NewWithOptions(opts ...SqliteOptionFunc) *MetadataStoreSqlite {
	db := &MetadataStoreSqlite{
		dbFile:        DefaultDbFile,
		busyTimeout:   DefaultBusyTimeoutMs * time.Millisecond,
		vacuumOnClose: true,
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		db.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return db
}

func (d *MetadataStoreSqlite) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *MetadataStoreSqlite) SetPromRegistry(registry prometheus.Registerer) {
	d.promRegistry = registry
}

func (d *MetadataStoreSqlite) open() (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	}
	if d.dataDir == "" {
		// Each store gets its own named in-memory database. cache=shared lets
		// the connection pool see the same data.
		return gorm.Open(
			sqlite.Open(
				fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
			),
			gormConfig,
		)
	}
	// Make sure that we can read data dir, and create if it doesn't exist
	if _, err := os.Stat(d.dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(d.dataDir, fs.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	metadataDbPath := filepath.Join(d.dataDir, d.dbFile)
	connOpts := fmt.Sprintf(
		"_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		d.busyTimeout.Milliseconds(),
	)
	return gorm.Open(
		sqlite.Open(fmt.Sprintf("file:%s?%s", metadataDbPath, connOpts)),
		gormConfig,
	)
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreSqlite) Start() error {
	db, err := d.open()
	if err != nil {
		return err
	}
	d.Queries = metadata.NewQueries(db)
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
func (d *MetadataStoreSqlite) Stop() error {
	return d.Close()
}

// Close vacuums a file-backed database when enabled and closes the
// connection
func (d *MetadataStoreSqlite) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.DB() == nil {
		return nil
	}
	var vacuumErr error
	if d.vacuumOnClose && d.dataDir != "" {
		d.logger.Debug(
			"running vacuum on sqlite metadata database",
			"component", "database",
		)
		if err := d.DB().Exec("VACUUM").Error; err != nil {
			vacuumErr = fmt.Errorf("vacuum: %w", err)
		}
	}
	db, err := d.DB().DB()
	if err != nil {
		return errors.Join(vacuumErr, fmt.Errorf("get database handle: %w", err))
	}
	return errors.Join(vacuumErr, db.Close())
}
