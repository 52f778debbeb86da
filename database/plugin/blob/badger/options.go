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
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type BlobStoreBadgerOptionFunc func(*BlobStoreBadger)

func WithLogger(logger *slog.Logger) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.logger = logger
	}
}

func WithPromRegistry(
	registry prometheus.Registerer,
) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.promRegistry = registry
	}
}

// WithDataDir sets the archive directory. An empty dir keeps the archive in
// memory.
func WithDataDir(dataDir string) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.dataDir = dataDir
	}
}

// WithCacheSize sets the badger block cache size in bytes
func WithCacheSize(size uint64) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.cacheSize = size
	}
}

// WithCompression selects snapshot compression: none, snappy or zstd
func WithCompression(compression string) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.compression = compression
	}
}

// WithSyncWrites makes every snapshot write wait for an fsync
func WithSyncWrites(enabled bool) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.syncWrites = enabled
	}
}

// WithGcInterval sets how often the value log is compacted. Zero disables
// compaction.
func WithGcInterval(interval time.Duration) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.gcInterval = interval
	}
}
