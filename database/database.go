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

package database

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/parlmembers/database/plugin"
	"github.com/blinklabs-io/parlmembers/database/plugin/blob"
	"github.com/blinklabs-io/parlmembers/database/plugin/metadata"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

// Config selects and configures the storage plugins
type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// BlobPlugin and MetadataPlugin name registered plugins. Empty selects
	// badger and sqlite.
	BlobPlugin     string
	MetadataPlugin string
	// DataDir is passed to plugins with a data-dir option. Empty keeps
	// those stores in memory.
	DataDir string
	// EncryptSnapshots wraps archived snapshots with SOPS
	EncryptSnapshots bool
}

// Database pairs the snapshot archive with the relational sink
type Database struct {
	logger           *slog.Logger
	blob             blob.BlobStore
	metadata         metadata.MetadataStore
	dataDir          string
	encryptSnapshots bool
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Metadata returns the underlying metadata store instance
func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// Close cleans up the database connections
func (d *Database) Close() error {
	var err error
	if d.metadata != nil {
		err = errors.Join(err, d.metadata.Close())
	}
	if d.blob != nil {
		err = errors.Join(err, d.blob.Close())
	}
	return err
}

func (d *Database) init() error {
	if d.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return d.checkLatestRun()
}

// New opens the configured plugins. A *LatestRunError is returned along with
// a usable database so that the caller can decide whether to continue.
func New(cfg *Config) (*Database, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	blobPlugin := cfg.BlobPlugin
	if blobPlugin == "" {
		blobPlugin = DefaultBlobPlugin
	}
	metadataPlugin := cfg.MetadataPlugin
	if metadataPlugin == "" {
		metadataPlugin = DefaultMetadataPlugin
	}
	if err := plugin.SetPluginOption(
		plugin.PluginTypeBlob,
		blobPlugin,
		"data-dir",
		cfg.DataDir,
	); err != nil {
		return nil, err
	}
	if err := plugin.SetPluginOption(
		plugin.PluginTypeMetadata,
		metadataPlugin,
		"data-dir",
		cfg.DataDir,
	); err != nil {
		return nil, err
	}
	metadataDb, err := metadata.New(metadataPlugin, cfg.Logger, cfg.PromRegistry)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	blobDb, err := blob.New(blobPlugin, cfg.Logger, cfg.PromRegistry)
	if err != nil {
		_ = metadataDb.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return newDatabase(cfg, blobDb, metadataDb)
}

// NewWithStores wraps already started stores
func NewWithStores(
	cfg *Config,
	blobDb blob.BlobStore,
	metadataDb metadata.MetadataStore,
) (*Database, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if blobDb == nil || metadataDb == nil {
		return nil, ErrNoStoreAvailable
	}
	return newDatabase(cfg, blobDb, metadataDb)
}

func newDatabase(
	cfg *Config,
	blobDb blob.BlobStore,
	metadataDb metadata.MetadataStore,
) (*Database, error) {
	db := &Database{
		logger:           cfg.Logger,
		blob:             blobDb,
		metadata:         metadataDb,
		dataDir:          cfg.DataDir,
		encryptSnapshots: cfg.EncryptSnapshots,
	}
	if err := db.init(); err != nil {
		// Database is available for recovery, so return it with error
		return db, err
	}
	return db, nil
}
