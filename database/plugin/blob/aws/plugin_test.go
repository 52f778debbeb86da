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

package aws

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go/logging"
	"github.com/blinklabs-io/parlmembers/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves the path-style subset of the S3 API used by the store
type fakeS3 struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
}

type listResult struct {
	XMLName     xml.Name `xml:"ListBucketResult"`
	Name        string   `xml:"Name"`
	Prefix      string   `xml:"Prefix"`
	KeyCount    int      `xml:"KeyCount"`
	MaxKeys     int      `xml:"MaxKeys"`
	IsTruncated bool     `xml:"IsTruncated"`
	Contents    []struct {
		Key  string `xml:"Key"`
		Size int    `xml:"Size"`
	} `xml:"Contents"`
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := strings.TrimPrefix(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	if bucket != f.bucket {
		http.Error(w, "bad bucket", http.StatusBadRequest)
		return
	}
	switch {
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodGet && key == "":
		prefix := r.URL.Query().Get("prefix")
		res := listResult{Name: bucket, Prefix: prefix, MaxKeys: 1000}
		keys := make([]string, 0, len(f.objects))
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			res.Contents = append(res.Contents, struct {
				Key  string `xml:"Key"`
				Size int    `xml:"Size"`
			}{Key: k, Size: len(f.objects[k])})
		}
		res.KeyCount = len(keys)
		w.Header().Set("Content-Type", "application/xml")
		_ = xml.NewEncoder(w).Encode(res)
	case r.Method == http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(
				w,
				`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`,
			)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		_, _ = w.Write(data)
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func setupFakeS3(t *testing.T) (*fakeS3, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	fake := &fakeS3{bucket: "archive", objects: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv.URL
}

func TestParseDataDir(t *testing.T) {
	bucket, prefix, err := parseDataDir("s3://archive/parl/members/")
	require.NoError(t, err)
	assert.Equal(t, "archive", bucket)
	assert.Equal(t, "parl/members/", prefix)

	bucket, prefix, err = parseDataDir("s3://archive")
	require.NoError(t, err)
	assert.Equal(t, "archive", bucket)
	assert.Empty(t, prefix)

	_, _, err = parseDataDir("/var/lib/archive")
	require.Error(t, err)
	_, _, err = parseDataDir("s3:///prefix")
	require.Error(t, err)
}

func TestStartWithoutBucket(t *testing.T) {
	store := NewWithOptions()
	require.Error(t, store.Start())
}

func TestNotStarted(t *testing.T) {
	store := NewWithOptions(WithBucket("archive"))
	_, err := store.Get(context.Background(), "k")
	require.ErrorIs(t, err, types.ErrBlobStoreUnavailable)
	require.ErrorIs(
		t,
		store.Put(context.Background(), "k", nil),
		types.ErrBlobStoreUnavailable,
	)
}

func TestIsS3NotFound(t *testing.T) {
	assert.True(t, isS3NotFound(&s3types.NoSuchKey{}))
	assert.True(t, isS3NotFound(fmt.Errorf("wrapped: %w", &s3types.NoSuchKey{})))
	assert.False(t, isS3NotFound(&s3types.NoSuchBucket{}))
	assert.False(t, isS3NotFound(io.EOF))
}

func TestPutGetList(t *testing.T) {
	fake, endpoint := setupFakeS3(t)
	registry := prometheus.NewRegistry()
	store := NewWithOptions(
		WithBucket("archive"),
		WithPrefix("/parl/"),
		WithEndpoint(endpoint),
		WithPromRegistry(registry),
	)
	require.NoError(t, store.Start())
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	key := types.SnapshotKey("2024-07-05", types.SnapshotMembers)
	require.NoError(t, store.Put(ctx, key, []byte(`[]`)))
	require.NoError(t, store.Put(ctx, types.LatestRunKey, []byte("2024-07-05")))

	fake.mu.Lock()
	_, ok := fake.objects["parl/"+key]
	fake.mu.Unlock()
	assert.True(t, ok, "object should be stored under the prefix")

	data, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), data)

	_, err = store.Get(ctx, "snapshots/missing.json")
	require.ErrorIs(t, err, types.ErrBlobKeyNotFound)

	keys, err := store.List(ctx, types.SnapshotKeyPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	count, err := testutil.GatherAndCount(registry, "parlmembers_blob_ops_total")
	require.NoError(t, err)
	assert.Positive(t, count)
}

func TestS3LoggerLevels(t *testing.T) {
	var buf strings.Builder
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	l := NewS3Logger(slog.New(handler))
	l.Logf(logging.Warn, "retrying %s", "PutObject")
	l.Logf(logging.Debug, "request %d", 1)
	l.objectDone(context.Background(), "get", "snapshots/x.json", 10)
	l.objectDone(context.Background(), "put", "snapshots/x.json", 10)
	out := buf.String()
	assert.Contains(t, out, "retrying PutObject")
	assert.NotContains(t, out, "request 1")
	assert.NotContains(t, out, "msg=\"s3 get\"")
	assert.Contains(t, out, "msg=\"s3 put\"")
	assert.Contains(t, out, "store=s3")
}
