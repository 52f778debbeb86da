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

package badger_test

import (
	"context"
	"testing"

	"github.com/blinklabs-io/parlmembers/database/plugin/blob/badger"
	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startStore(t *testing.T, opts ...badger.BlobStoreBadgerOptionFunc) *badger.BlobStoreBadger {
	t.Helper()
	store := badger.New(opts...)
	require.NoError(t, store.Start())
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestInMemoryPutGetList(t *testing.T) {
	ctx := context.Background()
	registry := prometheus.NewRegistry()
	store := startStore(t, badger.WithDataDir(""), badger.WithPromRegistry(registry))

	require.NoError(t, store.Put(ctx, "snapshots/2026-10-16/members.json", []byte(`[]`)))
	require.NoError(t, store.Put(ctx, "snapshots/2026-10-09/members.json", []byte(`[1]`)))
	require.NoError(t, store.Put(ctx, "latest_run", []byte("2026-10-16")))

	val, err := store.Get(ctx, "snapshots/2026-10-09/members.json")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), val)

	_, err = store.Get(ctx, "snapshots/missing.json")
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)

	keys, err := store.List(ctx, "snapshots/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"snapshots/2026-10-09/members.json",
		"snapshots/2026-10-16/members.json",
	}, keys)

	count, err := testutil.GatherAndCount(registry, "parlmembers_blob_ops_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count, "one series per op label")
}

func TestPersistsToDataDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := badger.New(badger.WithDataDir(dir), badger.WithGcInterval(0), badger.WithCompression("snappy"))
	require.NoError(t, first.Start())
	require.NoError(t, first.Put(ctx, "latest_run", []byte("2026-10-16")))
	require.NoError(t, first.Close())

	second := startStore(t, badger.WithDataDir(dir))
	val, err := second.Get(ctx, "latest_run")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", string(val))
}

func TestNotStarted(t *testing.T) {
	store := badger.New()
	_, err := store.Get(context.Background(), "x")
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
	require.NoError(t, store.Close())
}

func TestCancelledContext(t *testing.T) {
	store := startStore(t, badger.WithDataDir(""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.Put(ctx, "k", []byte("v")), context.Canceled)
}

func TestUnknownCompression(t *testing.T) {
	store := badger.New(badger.WithDataDir(t.TempDir()), badger.WithCompression("lz4"))
	require.ErrorContains(t, store.Start(), "unknown badger compression")
	require.NoError(t, store.Close())
}
