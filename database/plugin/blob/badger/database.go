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

package badger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blinklabs-io/parlmembers/database/plugin/blob"
	"github.com/blinklabs-io/parlmembers/database/types"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

// BlobStoreBadger archives snapshots in badger. Data is kept in memory when
// no data directory is set.
type BlobStoreBadger struct {
	promRegistry prometheus.Registerer
	db           *badger.DB
	logger       *slog.Logger
	metrics      *blob.Metrics
	gcTicker     *time.Ticker
	gcStopCh     chan struct{}
	dataDir      string
	compression  string
	gcWg         sync.WaitGroup
	cacheSize    uint64
	gcInterval   time.Duration
	syncWrites   bool
}

// New creates a badger blob store. The database is opened by Start.
func New(opts ...BlobStoreBadgerOptionFunc) *BlobStoreBadger {
	d := &BlobStoreBadger{
		compression: DefaultCompression,
		cacheSize:   DefaultCacheSize,
		gcInterval:  DefaultGcIntervalMinutes * time.Minute,
		syncWrites:  true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *BlobStoreBadger) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *BlobStoreBadger) SetPromRegistry(registry prometheus.Registerer) {
	d.promRegistry = registry
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreBadger) Start() error {
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	compression, err := compressionType(d.compression)
	if err != nil {
		return err
	}
	var badgerOpts badger.Options
	if d.dataDir == "" {
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true)
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(d.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(d.dataDir, 0o755); err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = badger.DefaultOptions(filepath.Join(d.dataDir, "blob")).
			WithBlockCacheSize(int64(d.cacheSize)). //nolint:gosec // configured cache size
			WithCompression(compression).
			WithSyncWrites(d.syncWrites)
	}
	badgerOpts = badgerOpts.
		WithLogger(NewBadgerLogger(d.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return err
	}
	d.db = db
	d.metrics = blob.NewMetrics(d.promRegistry, "badger")
	if d.gcInterval > 0 && d.dataDir != "" {
		d.gcTicker = time.NewTicker(d.gcInterval)
		d.gcStopCh = make(chan struct{})
		d.gcWg.Add(1)
		go d.blobGc(d.gcTicker, d.gcStopCh)
	}
	return nil
}

func compressionType(name string) (options.CompressionType, error) {
	switch name {
	case "", "none":
		return options.None, nil
	case "snappy":
		return options.Snappy, nil
	case "zstd":
		return options.ZSTD, nil
	default:
		return options.None, fmt.Errorf("unknown badger compression %q", name)
	}
}

func (d *BlobStoreBadger) blobGc(t *time.Ticker, stop <-chan struct{}) {
	defer d.gcWg.Done()
	for {
		select {
		case <-t.C:
			for {
				// Run again as long as a rewrite happened
				err := d.db.RunValueLogGC(0.5)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					d.logger.Warn(
						fmt.Sprintf("blob DB: GC failure: %s", err),
						"component", "database",
					)
				}
				break
			}
		case <-stop:
			return
		}
	}
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreBadger) Stop() error {
	return d.Close()
}

// Close stops GC and closes the database
func (d *BlobStoreBadger) Close() error {
	if d.gcTicker != nil {
		d.gcTicker.Stop()
		close(d.gcStopCh)
		d.gcWg.Wait()
		d.gcTicker = nil
		d.gcStopCh = nil
	}
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// DB returns the database handle
func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

func (d *BlobStoreBadger) Get(ctx context.Context, key string) ([]byte, error) {
	if d.db == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ret []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		ret, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	d.metrics.Observe("get", len(ret))
	return ret, nil
}

func (d *BlobStoreBadger) Put(ctx context.Context, key string, value []byte) error {
	if d.db == nil {
		return types.ErrBlobStoreUnavailable
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return err
	}
	d.metrics.Observe("put", len(value))
	return nil
}

func (d *BlobStoreBadger) List(ctx context.Context, prefix string) ([]string, error) {
	if d.db == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	err := d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			Prefix: []byte(prefix),
		})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	d.metrics.Observe("list", 0)
	return keys, nil
}
