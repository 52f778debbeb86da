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

package gcs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	tempDir := t.TempDir()
	existing := filepath.Join(tempDir, "credentials.json")
	require.NoError(t, os.WriteFile(existing, []byte(`{}`), 0o600))

	tests := []struct {
		name         string
		path         string
		errorMessage string
	}{
		{name: "valid credentials file", path: existing},
		{
			name:         "nonexistent credentials file",
			path:         filepath.Join(tempDir, "nonexistent-credentials.json"),
			errorMessage: "GCS credentials file does not exist",
		},
		{
			name:         "directory",
			path:         tempDir,
			errorMessage: "is a directory",
		},
		{name: "empty credentials file path", path: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCredentials(tt.path)
			if tt.errorMessage == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMessage)
		})
	}
}

func TestNewDataDir(t *testing.T) {
	store, err := New("gcs://archive/parl", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "archive", store.bucketName)
	assert.Equal(t, "parl/", store.prefix)

	store, err = New("gcs://archive", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, store.prefix)

	_, err = New("archive", nil, nil)
	require.Error(t, err)
	_, err = New("gcs://", nil, nil)
	require.Error(t, err)
}

func TestOptions(t *testing.T) {
	registry := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := NewWithOptions(
		WithLogger(logger),
		WithPromRegistry(registry),
		WithBucket("test-bucket"),
		WithPrefix("/a/b/"),
		WithCredentialsFile("/etc/key.json"),
		WithEndpoint("http://localhost:4443/storage/v1/"),
	)
	assert.NotNil(t, b.logger)
	assert.Equal(t, "http://localhost:4443/storage/v1/", b.endpoint)
	assert.Equal(t, registry, b.promRegistry)
	assert.Equal(t, "test-bucket", b.bucketName)
	assert.Equal(t, "a/b/", b.prefix)
	assert.Equal(t, "/etc/key.json", b.credentialsFile)
	assert.Equal(t, "a/b/latest_run", b.fullKey(types.LatestRunKey))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("snapshots/2024-07-01/members.json"))
	assert.Equal(t, "text/plain; charset=utf-8", contentType(types.LatestRunKey))
}

func TestStartErrors(t *testing.T) {
	require.Error(t, NewWithOptions().Start())
	err := NewWithOptions(
		WithBucket("archive"),
		WithCredentialsFile(filepath.Join(t.TempDir(), "missing.json")),
	).Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestNotStarted(t *testing.T) {
	b := NewWithOptions(WithBucket("archive"))
	ctx := context.Background()
	_, err := b.Get(ctx, types.LatestRunKey)
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
	require.ErrorIs(t, b.Put(ctx, types.LatestRunKey, nil), types.ErrBlobStoreUnavailable)
	_, err = b.List(ctx, "")
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
	require.NoError(t, b.Close())
}
